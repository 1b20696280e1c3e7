// Package future provides the deferred-result container used by the RPC
// session to hand call outcomes back to callers.
//
// A Future is created pending and settles exactly once, either with a
// result or with an error. Late settle attempts are ignored, which is the
// contract the session relies on to make delivery at-most-once.
package future
