package transport

import (
	"github.com/ValentinKolb/dRPC/rpc/common"
)

// --------------------------------------------------------------------------
// Message Handler (implemented by the session layer)
// --------------------------------------------------------------------------

// IRPCMessageHandler receives inbound protocol events from the transport.
// The transport decodes wire messages before dispatching, the handler never
// sees raw bytes.
type IRPCMessageHandler interface {
	// OnResponse is called for every decoded inbound response.
	// err is empty if the server reported no error.
	OnResponse(msgid uint64, err string, result []byte)

	// OnConnectFailed is called exactly once when the connection is lost
	// for good (reconnect attempts exhausted). After this call the
	// transport is unusable until Connect is called again.
	OnConnectFailed(reason error)
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport.
// A transport owns exactly one persistent connection, its wire codec and
// its reconnect policy.
type IRPCClientTransport interface {
	// Connect establishes the connection with the given configuration and
	// registers the handler for inbound messages
	Connect(config common.ClientConfig, handler IRPCMessageHandler) error

	// SendMessage encodes and writes a message. If onSent is non-nil it is
	// invoked once the message has been handed to the connection.
	SendMessage(msg *common.Message, onSent func()) error

	// Close closes the transport connection
	Close() error
}
