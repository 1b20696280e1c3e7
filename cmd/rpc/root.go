package rpc

import (
	"fmt"

	"github.com/ValentinKolb/dRPC/cmd/util"
	"github.com/ValentinKolb/dRPC/rpc/client"
	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcClient *client.Client

	// RPCCommands represents the RPC command group
	RPCCommands = &cobra.Command{
		Use:                "rpc",
		Short:              "Perform RPC operations against a server",
		PersistentPreRunE:  setupRPCClient,
		PersistentPostRunE: teardownRPCClient,
	}

	callCmd = &cobra.Command{
		Use:   "call [method] [args...]",
		Short: "Call a remote method and wait for its result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rpcClient.Call(args[0], stringArgs(args[1:])...)
			if err != nil {
				return err
			}
			fmt.Println(string(result))
			return nil
		},
	}

	notifyCmd = &cobra.Command{
		Use:   "notify [method] [args...]",
		Short: "Send a one-way notification (no reply expected)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Notify(args[0], stringArgs(args[1:])...); err != nil {
				return err
			}
			fmt.Println("notified successfully")
			return nil
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the command group
	util.SetupRPCClientFlags(RPCCommands)

	// Add subcommands
	RPCCommands.AddCommand(callCmd)
	RPCCommands.AddCommand(notifyCmd)
	RPCCommands.AddCommand(perfCmd)
}

// setupRPCClient initializes the RPC client
func setupRPCClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Configure logging
	common.InitLoggers(viper.GetString("log-level"))

	// Get client configuration
	config := util.GetClientConfig()

	// Get the transport (carries the configured serializer)
	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the client
	rpcClient, err = client.New(*config, t)
	return err
}

// teardownRPCClient closes the RPC client
func teardownRPCClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}

// stringArgs converts CLI string arguments to raw byte arguments
func stringArgs(args []string) [][]byte {
	byteArgs := make([][]byte, len(args))
	for i, arg := range args {
		byteArgs[i] = []byte(arg)
	}
	return byteArgs
}
