// Package cmd implements the CLI commands for the river judge service.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"river-go/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Global flags
var (
	globalConfig    string
	globalLog       string
	globalLogFormat string
	globalLogLevel  string
)

// rootCmd is the base command for river-go.
var rootCmd = &cobra.Command{
	Use:   "river-go",
	Short: "Sandboxed submission judge",
	Long: `river-go is a sandboxed compile/run/compare judge service.

It accepts submissions over gRPC, compiles and executes them inside a
restricted namespace/cgroup/seccomp sandbox, and reports a verdict.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns a context that cancels on SIGINT/SIGTERM.
func GetContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalConfig, "config", "/etc/river-go/config.yaml", "path to the judge config file")
	rootCmd.PersistentFlags().StringVar(&globalLog, "log", "", "set the log file path")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "info", "set the log level (debug, info, warn, error)")
}

func setupLogging() {
	logOutput := os.Stderr
	if globalLog != "" {
		f, err := os.OpenFile(globalLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			logOutput = f
		}
	}

	logLevel := logging.ParseLevel(globalLogLevel)

	if globalLogFormat == "json" || globalLog != "" || logLevel != slog.LevelInfo {
		logger := logging.NewLogger(logging.Config{
			Level:  logLevel,
			Format: globalLogFormat,
			Output: logOutput,
		})
		logging.SetDefault(logger)
	}
}
