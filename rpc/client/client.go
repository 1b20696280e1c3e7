package client

import (
	"sync"
	"time"

	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/session"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("client")

// Client is the application-facing facade around a Session. It adds the
// periodic timeout-sweep trigger (so asynchronous and callback-style use
// does not depend on anyone driving the sweep manually) and a scoped
// lifecycle helper, see With.
type Client struct {
	*session.Session

	stopSweep chan struct{}
	sweepWg   sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New creates a client: it builds the session on the given transport and,
// when a positive timeout is configured, starts the periodic timeout sweep
// at the configured interval (1s by default).
func New(config common.ClientConfig, t transport.IRPCClientTransport) (*Client, error) {
	sess, err := session.New(config, t)
	if err != nil {
		return nil, err
	}

	c := &Client{
		Session:   sess,
		stopSweep: make(chan struct{}),
	}

	// A timeout of 0 disables per-call deadlines, so there is nothing for
	// the sweep to do
	if config.TimeoutSecond > 0 {
		c.sweepWg.Add(1)
		go c.runSweep(config.SweepInterval())
	}

	return c, nil
}

// runSweep drives the session's timeout sweep until the client is closed
func (c *Client) runSweep(interval time.Duration) {
	defer c.sweepWg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Session.StepTimeout()
		case <-c.stopSweep:
			return
		}
	}
}

// Close stops the sweep and closes the session. It is idempotent and
// always returns the outcome of the first close.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopSweep)
		c.sweepWg.Wait()
		c.closeErr = c.Session.Close()
	})
	return c.closeErr
}

// With runs fn with a freshly connected client and closes the client when
// the scope exits, whether fn returned, failed or panicked. An error from
// fn always wins over an error from the close, so a propagating failure is
// never masked.
func With(config common.ClientConfig, t transport.IRPCClientTransport, fn func(*Client) error) (err error) {
	c, err := New(config, t)
	if err != nil {
		return err
	}

	// The close runs deferred so a panic escaping fn still releases the
	// transport and stops the sweep before it propagates to the caller
	defer func() {
		closeErr := c.Close()
		if err != nil {
			if closeErr != nil {
				Logger.Warningf("Error closing client after failed scope: %v", closeErr)
			}
			return
		}
		err = closeErr
	}()

	return fn(c)
}
