// Package unix provides the Unix domain socket connector for the base
// client transport. Useful when client and server run on the same host.
package unix
