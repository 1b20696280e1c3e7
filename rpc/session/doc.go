// Package session implements the correlation core of the RPC client: the
// message-id generator, the pending-call registry, the timeout sweep and
// the protocol decision rules for requests, notifications and responses.
//
// The package focuses on:
//   - Multiplexing many logically concurrent calls onto one connection
//   - Matching every inbound response to the call that requested it
//   - Delivering each outcome (result, remote error, timeout, connection
//     failure) exactly once to the right caller
//   - Enforcing per-call timeouts without blocking callers on each other
//
// Key Components:
//
//   - Session: the orchestrator. Exposes the four call shapes (Call,
//     CallAsync, CallWithCallback, Notify), owns the transport and reacts
//     to its callbacks.
//
//   - idGenerator: sequential wrapping message-id stream. Ids are unique
//     among outstanding calls; reuse after completion is safe.
//
//   - registry: the pending-call table. A record is either a future or a
//     completion callback and is removed exactly once, which enforces the
//     at-most-once delivery invariant.
//
// Error semantics:
//
//	Future-based calls surface RemoteError, TimeoutError and
//	ConnectionError through the future's error slot. Callback-based calls
//	receive nil on any error, are never timed out and are not notified of
//	connection failures. This asymmetry is inherited protocol behavior and
//	is covered by tests so it is not "fixed" accidentally.
//
// Thread Safety:
//
//	A Session may be used from multiple goroutines. Dispatch is serialized
//	by a mutex and the registry is a concurrent map with atomic
//	removal-on-take, so delivery races (response vs. sweep vs. failure
//	broadcast) resolve to exactly one winner.
package session
