// Package tcp provides the TCP connector for the base client transport.
// The connector applies the configured socket buffers, keep-alive, linger
// and no-delay settings when a connection is established.
package tcp
