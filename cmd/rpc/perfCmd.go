package rpc

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/ValentinKolb/dRPC/cmd/util"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfCmd = &cobra.Command{
		Use:     "perf [method]",
		Short:   "Performance testing tool for RPC servers",
		Long:    util.WrapString("Repeatedly calls the given method (default: echo) and reports latency percentiles and throughput."),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}

	perfRequests    = 1000
	perfPayloadSize = 64
)

func init() {
	// add flags
	key := "requests"
	perfCmd.Flags().Int(key, 1000, util.WrapString("Number of requests to send"))
	key = "payload-size"
	perfCmd.Flags().Int(key, 64, util.WrapString("Size of the request payload in bytes"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfRequests = viper.GetInt("requests")
	perfPayloadSize = viper.GetInt("payload-size")

	return nil
}

func runPerf(_ *cobra.Command, args []string) error {
	method := "echo"
	if len(args) > 0 {
		method = args[0]
	}

	fmt.Println("Performance testing tool for RPC servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Method: %s\n", method)
	fmt.Printf("Requests: %d\n", perfRequests)
	fmt.Printf("Payload: %d bytes\n", perfPayloadSize)
	fmt.Println()

	payload := make([]byte, perfPayloadSize)
	if _, err := rand.Read(payload); err != nil {
		return err
	}

	timer := metrics.NewTimer()
	defer timer.Stop()

	failures := 0
	start := time.Now()

	for i := 0; i < perfRequests; i++ {
		callStart := time.Now()
		if _, err := rpcClient.Call(method, payload); err != nil {
			failures++
			continue
		}
		timer.UpdateSince(callStart)
	}

	elapsed := time.Since(start)
	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})

	fmt.Println("Results:")
	fmt.Printf("  %-12s: %d\n", "Succeeded", timer.Count())
	fmt.Printf("  %-12s: %d\n", "Failed", failures)
	fmt.Printf("  %-12s: %s\n", "Total", elapsed.Round(time.Millisecond))
	fmt.Printf("  %-12s: %.1f req/s\n", "Throughput", float64(timer.Count())/elapsed.Seconds())
	fmt.Printf("  %-12s: %s\n", "Mean", time.Duration(timer.Mean()).Round(time.Microsecond))
	fmt.Printf("  %-12s: %s\n", "P50", time.Duration(ps[0]).Round(time.Microsecond))
	fmt.Printf("  %-12s: %s\n", "P95", time.Duration(ps[1]).Round(time.Microsecond))
	fmt.Printf("  %-12s: %s\n", "P99", time.Duration(ps[2]).Round(time.Microsecond))

	return nil
}
