// Package rpc provides an asynchronous RPC client framework: many
// logically concurrent calls are multiplexed onto one persistent
// connection and correlated back to their callers by message id.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures used across the RPC client, including
//     the wire Message model, configuration structures, and logging.
//
//   - session: The correlation core. Owns the message-id generator, the
//     pending-call registry and the timeout sweep, and exposes the call
//     surface (Call, CallAsync, CallWithCallback, Notify).
//
//   - future: The deferred-result container handed to asynchronous callers.
//
//   - transport: Network communication abstractions with pluggable stream
//     implementations (TCP, Unix sockets) and a shared base engine.
//
//   - serializer: Message serialization with multiple format options
//     (Binary, JSON, GOB) for converting between Messages and byte arrays.
//
//   - client: The application-facing facade adding the periodic timeout
//     sweep and scoped connect/use/release lifecycle.
package rpc
