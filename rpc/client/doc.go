// Package client provides the application-facing facade around the RPC
// session.
//
// Key Components:
//
//   - Client: wraps a session.Session, exposing its full call surface
//     (Call, CallAsync, CallWithCallback, Notify) by embedding, and runs
//     the periodic timeout sweep so per-call deadlines fire even when no
//     synchronous call is in flight.
//
//   - With: scoped acquisition and release. Connects a client, runs the
//     given function and unconditionally closes the client afterwards. A
//     failure from the function is never masked by a close error.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TimeoutSecond: 10,
//	  Transport:     common.ClientTransportConfig{Endpoint: "localhost:5000", ReconnectLimit: 5},
//	}
//
//	err := client.With(config, tcp.NewTCPClientTransport(serializer.NewBinarySerializer()), func(c *client.Client) error {
//	  result, err := c.Call("add", []byte("2"), []byte("3"))
//	  if err != nil {
//	    return err
//	  }
//	  fmt.Println(string(result))
//	  return nil
//	})
package client
