// Command george-server runs the george bootstrap/recovery process as a
// long-lived daemon: open (or create) data_dir, recover every database and
// page beneath it, and periodically sweep page TTLs until signaled to stop.
//
// There is no network listener here; wiring an actual grpc/drpc
// transport is a separate concern. This binary exists so the bootstrap
// and sweep loop can run unattended; cmd/george-cli is the in-process
// client for everything else.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aberic/george/internal/config"
	"github.com/aberic/george/internal/logging"
	"github.com/aberic/george/pkg/master"
)

var cfg config.Config

func main() {
	root := &cobra.Command{
		Use:   "george-server",
		Short: "run the george bootstrap and page-sweep daemon",
		RunE:  run,
	}
	if err := config.Bind(root, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if err := config.Exec(&cfg); err != nil {
		return err
	}

	log, err := logging.New(&cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m, err := master.Open(ctx, &cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.SweepPages(ctx); err != nil {
				log.Error("page sweep failed", zap.Error(err))
			}
		}
	}
}
