package session

import (
	"github.com/ValentinKolb/dRPC/rpc/future"
	"github.com/puzpuzpuz/xsync/v3"
)

// ResponseCallback is the completion callback of a fire-and-forget call.
// On a successful response it receives the result; if the server reported
// an error it receives nil (the error detail is not propagated on this
// path, callers needing it must use the future-based APIs).
type ResponseCallback func(result []byte)

// pendingCall is the record of one outstanding request, keyed by message
// id. Exactly one of fut and callback is set.
type pendingCall struct {
	method   string
	fut      *future.Future
	callback ResponseCallback
}

// registry is the pending-call table. A record is created when a request
// is sent and removed exactly once: on the matching response, on timeout,
// or on bulk clearing after a connection failure or close. Removal happens
// atomically via take (LoadAndDelete), which is what makes delivery
// at-most-once.
type registry struct {
	calls *xsync.MapOf[uint64, *pendingCall]
}

func newRegistry() *registry {
	return &registry{
		calls: xsync.NewMapOf[uint64, *pendingCall](),
	}
}

// registerFuture stores a future-based record under the given id
func (r *registry) registerFuture(msgid uint64, method string, fut *future.Future) {
	r.calls.Store(msgid, &pendingCall{method: method, fut: fut})
}

// registerCallback stores a callback-based record under the given id
func (r *registry) registerCallback(msgid uint64, method string, cb ResponseCallback) {
	r.calls.Store(msgid, &pendingCall{method: method, callback: cb})
}

// take removes and returns the record for the given id. At most one caller
// ever observes a given record.
func (r *registry) take(msgid uint64) (*pendingCall, bool) {
	return r.calls.LoadAndDelete(msgid)
}

// expired collects the ids of all future-based records whose deadline has
// elapsed. Callback-based records have no timeout semantics and are never
// reported.
func (r *registry) expired() []uint64 {
	var ids []uint64
	r.calls.Range(func(msgid uint64, call *pendingCall) bool {
		if call.fut != nil && call.fut.StepTimeout() {
			ids = append(ids, msgid)
		}
		return true
	})
	return ids
}

// takeFutures removes and returns all future-based records, leaving
// callback-based records in place. Used for the connection-failure
// broadcast, which does not notify callback registrations.
func (r *registry) takeFutures() []*pendingCall {
	var taken []*pendingCall
	r.calls.Range(func(msgid uint64, call *pendingCall) bool {
		if call.fut != nil {
			if got, ok := r.calls.LoadAndDelete(msgid); ok {
				taken = append(taken, got)
			}
		}
		return true
	})
	return taken
}

// size returns the number of outstanding records
func (r *registry) size() int {
	return r.calls.Size()
}

// clear drops all records without delivering anything. Futures still in
// the table are abandoned and will never settle.
func (r *registry) clear() {
	r.calls.Clear()
}
