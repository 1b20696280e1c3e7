package session

import (
	"sync"
	"time"

	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/future"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("session")

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	metricRequestsSent      = metrics.NewCounter("drpc_requests_sent_total")
	metricNotificationsSent = metrics.NewCounter("drpc_notifications_sent_total")
	metricResponsesMatched  = metrics.NewCounter("drpc_responses_matched_total")
	metricResponsesDropped  = metrics.NewCounter("drpc_responses_discarded_total")
	metricTimeouts          = metrics.NewCounter("drpc_request_timeouts_total")
	metricConnFailures      = metrics.NewCounter("drpc_connection_failures_total")
)

// --------------------------------------------------------------------------
// Session
// --------------------------------------------------------------------------

// Session multiplexes logically concurrent calls onto one transport
// connection and matches inbound responses to callers by message id.
//
// The session owns the id generator, the pending-call registry and the
// transport instance. It implements transport.IRPCMessageHandler, the
// transport delivers decoded responses and connection failures into it.
type Session struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	generator  *idGenerator
	registry   *registry
	dispatchMu sync.Mutex // serializes id allocation + send ordering

	closeMu sync.Mutex
	closed  bool
}

// New creates a session and connects its transport. The transport must
// already carry its wire codec; the session never touches bytes.
func New(config common.ClientConfig, t transport.IRPCClientTransport) (*Session, error) {
	s := &Session{
		config:    config,
		transport: t,
		generator: newIDGenerator(),
		registry:  newRegistry(),
	}

	if err := t.Connect(config, s); err != nil {
		return nil, err
	}

	Logger.Infof("Session established to %s (timeout: %s)", config.Transport.Endpoint, config.Timeout())
	return s, nil
}

// Address returns the configured endpoint of this session
func (s *Session) Address() string {
	return s.config.Transport.Endpoint
}

// PendingCalls returns the number of currently outstanding calls
func (s *Session) PendingCalls() int {
	return s.registry.size()
}

// --------------------------------------------------------------------------
// Call dispatch
// --------------------------------------------------------------------------

// Call performs a synchronous call: it sends the request and blocks until
// the response arrives, the call times out, or the connection fails. While
// blocked it keeps driving the timeout sweep, so a synchronous caller does
// not depend on the periodic sweep running elsewhere.
func (s *Session) Call(method string, args ...[]byte) ([]byte, error) {
	fut, err := s.sendRequest(method, args)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(s.config.SweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-fut.Done():
			return fut.Get()
		case <-ticker.C:
			s.StepTimeout()
		}
	}
}

// CallAsync sends the request and returns the future handle immediately.
// The caller decides when to wait. Timeout delivery for the returned
// future depends on the sweep being driven (see client.New).
func (s *Session) CallAsync(method string, args ...[]byte) (*future.Future, error) {
	return s.sendRequest(method, args)
}

// CallWithCallback registers a completion callback instead of a future and
// returns without blocking. Callback-based calls have no timeout and are
// not notified of connection failures; callers needing either must use
// Call or CallAsync.
func (s *Session) CallWithCallback(method string, callback ResponseCallback, args ...[]byte) error {
	if s.isClosed() {
		return ErrClosed
	}

	s.dispatchMu.Lock()
	msgid := s.generator.Next()
	s.registry.registerCallback(msgid, method, callback)

	err := s.transport.SendMessage(common.NewRequestMessage(msgid, method, args), nil)
	s.dispatchMu.Unlock()

	if err != nil {
		s.registry.take(msgid)
		return err
	}

	metricRequestsSent.Inc()
	return nil
}

// Notify sends a one-way notification: no id, no registry entry, no reply.
// It blocks until the transport has handed the message to the connection,
// so the notification is flushed before Notify returns. When a timeout is
// configured the wait is bounded by it.
func (s *Session) Notify(method string, args ...[]byte) error {
	if s.isClosed() {
		return ErrClosed
	}

	sent := make(chan struct{})

	s.dispatchMu.Lock()
	err := s.transport.SendMessage(common.NewNotifyMessage(method, args), func() {
		close(sent)
	})
	s.dispatchMu.Unlock()

	if err != nil {
		return err
	}

	metricNotificationsSent.Inc()

	if timeout := s.config.Timeout(); timeout > 0 {
		select {
		case <-sent:
			return nil
		case <-time.After(timeout):
			return &TimeoutError{Method: method}
		}
	}

	<-sent
	return nil
}

// sendRequest allocates an id, registers a future under it and sends the
// request. Registration happens before the send so a response can never
// arrive for an unregistered id.
func (s *Session) sendRequest(method string, args [][]byte) (*future.Future, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	fut := future.New(s.config.Timeout())

	s.dispatchMu.Lock()
	msgid := s.generator.Next()
	s.registry.registerFuture(msgid, method, fut)

	err := s.transport.SendMessage(common.NewRequestMessage(msgid, method, args), nil)
	s.dispatchMu.Unlock()

	if err != nil {
		s.registry.take(msgid)
		return nil, err
	}

	metricRequestsSent.Inc()
	return fut, nil
}

// --------------------------------------------------------------------------
// Response correlation (docu see transport.IRPCMessageHandler)
// --------------------------------------------------------------------------

func (s *Session) OnResponse(msgid uint64, errStr string, result []byte) {
	call, ok := s.registry.take(msgid)
	if !ok {
		// Unknown id: already timed out, already answered, or never ours.
		// Silently discard, this is a benign late/duplicate arrival and
		// intentionally not surfaced to the application.
		metricResponsesDropped.Inc()
		Logger.Debugf("Discarding response for unknown msgid %d", msgid)
		return
	}

	metricResponsesMatched.Inc()

	if call.fut != nil {
		if errStr != "" {
			call.fut.SetError(&RemoteError{Method: call.method, Reason: errStr})
		} else {
			call.fut.SetResult(result)
		}
		return
	}

	// Callback path: errors collapse to nil, the detail is dropped
	if errStr != "" {
		call.callback(nil)
	} else {
		call.callback(result)
	}
}

func (s *Session) OnConnectFailed(reason error) {
	metricConnFailures.Inc()
	Logger.Errorf("Connection to %s failed: %v", s.Address(), reason)

	// Broadcast fault: fail ALL outstanding future-based calls with the
	// reason. Callback-based registrations are not notified, they are
	// dropped when the registry is cleared below.
	failure := &ConnectionError{Reason: reason}
	for _, call := range s.registry.takeFutures() {
		call.fut.SetError(failure)
	}

	if err := s.Close(); err != nil {
		Logger.Warningf("Error closing session after connection failure: %v", err)
	}
}

// --------------------------------------------------------------------------
// Timeout sweep
// --------------------------------------------------------------------------

// StepTimeout scans the registry for future-based calls whose deadline has
// elapsed and fails each of them with a TimeoutError. Invoked periodically
// by the client facade and by Call while it blocks. Expired calls are
// taken atomically, so a response racing the sweep is delivered at most
// once, whichever side takes the record first wins and the loser's
// delivery attempt finds nothing.
func (s *Session) StepTimeout() {
	expired := s.registry.expired()
	if len(expired) == 0 {
		return
	}

	for _, msgid := range expired {
		call, ok := s.registry.take(msgid)
		if !ok {
			// A response arrived between the scan and the take
			continue
		}
		metricTimeouts.Inc()
		Logger.Warningf("Request %d (%s) timed out", msgid, call.method)
		call.fut.SetError(&TimeoutError{Method: call.method})
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Close tears down the transport and clears the registry. Pending futures
// still in the registry are abandoned: they will never settle unless they
// already received a connection-failure error. Close is idempotent.
func (s *Session) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	s.closeMu.Unlock()

	err := s.transport.Close()
	s.registry.clear()

	Logger.Infof("Session to %s closed", s.config.Transport.Endpoint)
	return err
}

func (s *Session) isClosed() bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	return s.closed
}
