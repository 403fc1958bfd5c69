package cmd

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"river-go/config"
	"river-go/logging"
	"river-go/rpc"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the judge gRPC server",
	Long:  `serve loads the judge configuration and listens for Judge RPC streams.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", ":7000", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Default()

	cfg, err := config.Load(globalConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	self, err := selfExecutablePath()
	if err != nil {
		return fmt.Errorf("resolve self executable: %w", err)
	}

	lis, err := net.Listen("tcp", serveListen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", serveListen, err)
	}

	grpcServer := grpc.NewServer()
	rpc.Register(grpcServer, rpc.NewServer(cfg, self))

	log.Info("judge listening", "addr", serveListen, "languages", len(cfg.Languages), "cpu_limit", cfg.CPULimit)

	ctx := GetContext()
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		grpcServer.GracefulStop()
	}()

	return grpcServer.Serve(lis)
}

// selfExecutablePath resolves the running binary's path, used to re-exec
// into the sandbox-init subcommand across the fork/exec boundary.
func selfExecutablePath() (string, error) {
	return os.Executable()
}
