// optrace is the command-line companion of the profiler. It records the
// trace of a demo workload and serves recorded traces for inspection.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "optrace",
	Short: "Record and inspect execution traces.",
	Long: `optrace records timestamped ranges and marks from instrumented ` +
		`workloads and renders them as Chrome trace JSON. The demo command ` +
		`runs a built-in workload; the view command serves a recorded trace ` +
		`in the browser.`,
}

func main() {
	// Optional .env with settings such as OPTRACE_MONITOR_PORT.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Panic(err)
	}

	return logger
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
