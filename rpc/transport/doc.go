// Package transport defines the client transport abstraction: one
// persistent connection that carries encoded wire messages out and
// delivers decoded responses (or a terminal connection failure) back into
// the session through the IRPCMessageHandler callbacks.
//
// Implementations live in the subpackages:
//
//   - base: the transport engine, independent of the connection medium.
//     Handles framing, the wire codec, the reader goroutine and the
//     reconnect policy. Media plug in via the IClientConnector interface.
//
//   - tcp, unix: stream socket connectors for the base engine.
package transport
