// Package cmd implements the command-line interface for the dRPC client.
// It provides a hierarchical command structure for calling remote methods,
// sending notifications and benchmarking a server.
//
// The package is organized into several subpackages:
//
//   - rpc: Commands for RPC operations (call, notify, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See drpc -help for a list of all commands.
package cmd
