package client

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/session"
	"github.com/ValentinKolb/dRPC/rpc/transport"
)

// silentTransport accepts everything and never answers
type silentTransport struct {
	mu     sync.Mutex
	closed bool
}

func (m *silentTransport) Connect(common.ClientConfig, transport.IRPCMessageHandler) error {
	return nil
}

func (m *silentTransport) SendMessage(_ *common.Message, onSent func()) error {
	if onSent != nil {
		onSent()
	}
	return nil
}

func (m *silentTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *silentTransport) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func testConfig(timeoutSec int) common.ClientConfig {
	return common.ClientConfig{
		TimeoutSecond:   timeoutSec,
		SweepIntervalMs: 10,
		Transport: common.ClientTransportConfig{
			Endpoint: "localhost:18800",
		},
	}
}

func TestSweepTimesOutAsyncCall(t *testing.T) {
	c, err := New(testConfig(1), &silentTransport{})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	// Nobody drives the sweep manually here: the client's periodic sweep
	// alone must fail the call once the deadline elapses
	fut, err := c.CallAsync("slow")
	if err != nil {
		t.Fatalf("CallAsync failed: %v", err)
	}

	select {
	case <-fut.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("Future was never settled by the periodic sweep")
	}

	_, err = fut.Get()
	var timeoutErr *session.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
	if c.PendingCalls() != 0 {
		t.Errorf("Registry must be empty after timeout, has %d entries", c.PendingCalls())
	}
}

func TestNoSweepWithoutTimeout(t *testing.T) {
	// Timeout 0 disables deadlines entirely: the call must still be
	// pending long after any sweep interval
	c, err := New(testConfig(0), &silentTransport{})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	fut, err := c.CallAsync("forever")
	if err != nil {
		t.Fatalf("CallAsync failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if fut.Settled() {
		t.Error("Call without timeout must never expire")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	mock := &silentTransport{}
	c, err := New(testConfig(1), mock)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !mock.isClosed() {
		t.Error("Transport must be closed")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Second close must be a no-op, got %v", err)
	}
}

func TestWithClosesOnSuccess(t *testing.T) {
	mock := &silentTransport{}

	err := With(testConfig(1), mock, func(c *Client) error {
		return c.Notify("event")
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if !mock.isClosed() {
		t.Error("Client must be closed after the scope ends")
	}
}

func TestWithClosesOnPanic(t *testing.T) {
	mock := &silentTransport{}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("Panic must propagate out of the scope")
			}
		}()
		With(testConfig(1), mock, func(*Client) error {
			panic("scope blew up")
		})
	}()

	if !mock.isClosed() {
		t.Error("Client must be closed even when the scope panics")
	}
}

func TestWithNeverMasksError(t *testing.T) {
	mock := &silentTransport{}
	failure := errors.New("scope failed")

	err := With(testConfig(1), mock, func(*Client) error {
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Expected the scope's error, got %v", err)
	}
	if !mock.isClosed() {
		t.Error("Client must be closed even when the scope fails")
	}
}
