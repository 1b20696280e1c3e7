// Package common contains the core data structures shared across the RPC
// client: the wire Message model, client configuration, and logging setup.
//
// Key Components:
//
//   - Message: the single wire message struct used for requests, responses
//     and notifications, together with factory functions for each shape.
//     Messages are array-encoded with position-significant fields.
//
//   - MessageType: the wire tag (request = 0, response = 1, notify = 2).
//
//   - ClientConfig: all configuration recognized at client construction,
//     including the per-call timeout, the timeout-sweep interval and the
//     transport settings that are forwarded (but not interpreted) by the
//     session layer.
//
//   - InitLoggers / CreateLogger: logger factory producing the uniform
//     log format used by all subsystems.
package common
