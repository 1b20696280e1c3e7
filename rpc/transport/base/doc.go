// Package base implements the transport engine shared by all stream
// transports (tcp, unix).
//
// The engine owns exactly one persistent connection. Outbound messages are
// serialized and written as length-prefixed frames under a write mutex; a
// single reader goroutine reads inbound frames, decodes them and hands
// responses to the registered message handler. When a read fails the
// engine re-establishes the connection with exponential backoff up to the
// configured reconnect limit; once that budget is exhausted it reports the
// failure to the handler exactly once and stops.
//
// Connection media are injected through the IClientConnector interface,
// which dials an endpoint and applies protocol-specific socket settings.
package base
