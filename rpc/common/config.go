package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// DefaultSweepIntervalMs is the interval of the periodic timeout sweep
const DefaultSweepIntervalMs = 1000

// SocketConf holds buffer settings shared by all stream transports
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket settings
type TCPConf struct {
	TCPKeepAliveSec int
	TCPLingerSec    int
	TCPNoDelay      bool
}

// ClientTransportConfig holds all transport level settings
type ClientTransportConfig struct {
	// Endpoint is the address of the RPC server
	Endpoint string
	// ReconnectLimit is how often the transport may try to restore a
	// broken connection before reporting a connection failure
	ReconnectLimit int

	SocketConf SocketConf
	TCPConf    TCPConf
}

// ClientConfig holds all configuration parameters for an RPC client session.
type ClientConfig struct {
	// TimeoutSecond is the per-call timeout. 0 disables per-call deadlines
	// and the periodic timeout sweep.
	TimeoutSecond int

	// SweepIntervalMs is the interval of the timeout sweep. 0 means
	// DefaultSweepIntervalMs.
	SweepIntervalMs int

	// Serializer names the wire codec (json, gob, binary)
	Serializer string

	// Transport settings (forwarded to the transport layer, not
	// interpreted by the session)
	Transport ClientTransportConfig
}

// Timeout returns the per-call timeout as a duration (0 = no deadline)
func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// SweepInterval returns the configured sweep interval as a duration
func (c *ClientConfig) SweepInterval() time.Duration {
	if c.SweepIntervalMs <= 0 {
		return DefaultSweepIntervalMs * time.Millisecond
	}
	return time.Duration(c.SweepIntervalMs) * time.Millisecond
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Sweep Interval", c.SweepInterval().String())
	addField("Serializer", c.Serializer)

	// Transport
	addSection("Transport")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Reconnect Limit", strconv.Itoa(c.Transport.ReconnectLimit))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.SocketConf.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.SocketConf.ReadBufferSize))
	addField("TCP NoDelay", fmt.Sprintf("%t", c.Transport.TCPConf.TCPNoDelay))
	addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.Transport.TCPConf.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPConf.TCPLingerSec))

	return sb.String()
}
