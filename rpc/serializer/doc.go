// Package serializer provides message serialization capabilities for the
// RPC client. It defines a common interface and multiple implementations
// for serializing and deserializing wire messages.
//
// The package focuses on:
//   - Providing a consistent interface for different serialization formats
//   - Offering multiple implementations with different performance characteristics
//   - Supporting efficient encoding of the protocol's message structure
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format implementation optimized for speed
//     and space efficiency. Uses a flag-based approach to encode only present fields,
//     resulting in compact serialized data with minimal overhead.
//
//   - jsonSerializerImpl: Implementation using JSON encoding, producing the
//     protocol's position-significant array form. Human-readable, useful for
//     debugging and interoperability with non-Go peers.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding. Only
//     suitable when both peers are Go programs.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
