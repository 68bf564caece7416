package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shef088/Hospital-Management-System-sub001/internal/client"
	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
	"github.com/shef088/Hospital-Management-System-sub001/internal/log"
)

var rootCmd = &cobra.Command{
	Use:           "hmsctl",
	Short:         "Hospital management system client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newClient builds the full client context; every subcommand goes through it.
func newClient(ctx context.Context) (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := log.New(cfg.Environment)
	return client.New(ctx, cfg, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
