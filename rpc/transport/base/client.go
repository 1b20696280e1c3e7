package base

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/serializer"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the given endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Client Transport
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.).
//
// It owns one persistent connection. Outbound messages are encoded and
// written under a mutex; a single reader goroutine decodes inbound frames
// and dispatches responses to the registered handler. A broken connection
// is re-established up to ReconnectLimit times before the handler is told
// the connection failed for good.
type clientTransport struct {
	connector  IClientConnector
	serializer serializer.IRPCSerializer
	config     common.ClientConfig
	handler    transport.IRPCMessageHandler

	connMu sync.Mutex // protects conn and serializes writes
	conn   net.Conn

	stopCh  chan struct{}
	closing atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the
// specified connector and wire codec
func NewBaseClientTransport(connector IClientConnector, serializer serializer.IRPCSerializer) transport.IRPCClientTransport {
	return &clientTransport{
		connector:  connector,
		serializer: serializer,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig, handler transport.IRPCMessageHandler) error {
	if config.Transport.Endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}
	if handler == nil {
		return fmt.Errorf("no message handler provided")
	}

	t.config = config
	t.handler = handler
	t.closing.Store(false)
	t.stopCh = make(chan struct{})

	conn, err := t.reconnect()
	if err != nil {
		return err
	}

	Logger.Infof("Connected to %s using %s transport", config.Transport.Endpoint, t.connector.GetName())

	// Start the response reader
	go t.readResponses(conn)

	return nil
}

func (t *clientTransport) SendMessage(msg *common.Message, onSent func()) error {
	if t.closing.Load() {
		return fmt.Errorf("transport is closed")
	}

	data, err := t.serializer.Serialize(*msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %v", err)
	}

	t.connMu.Lock()
	conn := t.conn
	if conn == nil {
		t.connMu.Unlock()
		return fmt.Errorf("connection is closed")
	}

	// Set write timeout
	if t.config.TimeoutSecond > 0 {
		timeout := time.Duration(t.config.TimeoutSecond) * time.Second
		if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			Logger.Warningf("Failed to set write deadline: %v", err)
		}
	}

	err = writeFrame(conn, data)
	t.connMu.Unlock()

	if err != nil {
		return err
	}

	// The frame has been handed to the connection
	if onSent != nil {
		onSent()
	}
	return nil
}

func (t *clientTransport) Close() error {
	if t.closing.Swap(true) {
		return nil
	}
	if t.stopCh != nil {
		close(t.stopCh)
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		return err
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readResponses reads frames in a loop, decodes them and dispatches
// responses to the handler. On a read error it tries to restore the
// connection; once the reconnect budget is exhausted the handler's
// OnConnectFailed is invoked exactly once and the loop exits.
func (t *clientTransport) readResponses(conn net.Conn) {
	var buf []byte

	for {
		// Check if we should stop
		select {
		case <-t.stopCh:
			return
		default:
			// Continue
		}

		data, err := readFrame(conn, buf)
		if err != nil {
			if t.closing.Load() {
				return
			}

			Logger.Warningf("Error reading from %s: %v", t.config.Transport.Endpoint, err)

			newConn, reconnErr := t.restoreConnection()
			if reconnErr != nil {
				t.handler.OnConnectFailed(reconnErr)
				return
			}
			conn = newConn
			continue
		}
		buf = data[:cap(data)]

		var msg common.Message
		if err := t.serializer.Deserialize(data, &msg); err != nil {
			Logger.Errorf("Discarding undecodable frame (%d bytes): %v", len(data), err)
			continue
		}

		if msg.MsgType != common.MsgTResponse {
			Logger.Warningf("Received unexpected %s message, only responses are valid inbound", msg.MsgType)
			continue
		}

		t.handler.OnResponse(msg.MsgID, msg.Err, msg.Result)
	}
}

// restoreConnection retries reconnect with exponential backoff and a small
// random jitter until it succeeds or the ReconnectLimit is exhausted
func (t *clientTransport) restoreConnection() (net.Conn, error) {
	maxRetries := t.config.Transport.ReconnectLimit
	if maxRetries < 1 {
		maxRetries = 1
	}

	// Initial backoff duration in milliseconds
	backoffMs := 50

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if t.closing.Load() {
			return nil, fmt.Errorf("transport is closed")
		}

		conn, err := t.reconnect()
		if err == nil {
			Logger.Infof("Restored connection to %s (attempt %d/%d)", t.config.Transport.Endpoint, i+1, maxRetries)
			return conn, nil
		}

		lastErr = err
		Logger.Debugf("Reconnect attempt %d/%d failed: %v", i+1, maxRetries, err)

		// Exponential backoff with a small random jitter (+-10%)
		jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
		time.Sleep(time.Duration(jitter) * time.Millisecond)
		backoffMs *= 2
	}

	return nil, fmt.Errorf("failed to reconnect after %d attempts: %v", maxRetries, lastErr)
}

// reconnect establishes or restores the connection to the endpoint
func (t *clientTransport) reconnect() (net.Conn, error) {
	t.connMu.Lock()
	defer t.connMu.Unlock()

	// Close the old connection if it exists
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}

	// Connect to the endpoint
	conn, err := t.connector.Connect(t.config.Transport.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", t.config.Transport.Endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to upgrade connection to %s: %v", t.config.Transport.Endpoint, err)
	}

	t.conn = conn
	return conn, nil
}
