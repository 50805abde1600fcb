// Command george-cli is the in-process administrative client for george:
// every subcommand opens data_dir directly (via pkg/master), performs one
// operation, and renders the result as a table. There is no RPC client
// here because there is no RPC server: the servicepb
// request/response shapes are built and consumed entirely within this
// process, the way a future transport layer eventually would.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aberic/george/internal/config"
	"github.com/aberic/george/internal/logging"
	"github.com/aberic/george/pkg/master"
)

var cfg config.Config

func main() {
	root := &cobra.Command{
		Use:   "george-cli",
		Short: "administer a george data_dir in-process",
	}
	if err := config.Bind(root, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root.AddCommand(
		newDatabaseCmd(),
		newViewCmd(),
		newIndexCmd(),
		newPageCmd(),
		newDataCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openMaster loads the bound config and opens the data_dir it names. Every
// subcommand calls this once, at the start of its RunE.
func openMaster(cmd *cobra.Command) (*master.Master, *zap.Logger, error) {
	if err := config.Exec(&cfg); err != nil {
		return nil, nil, err
	}
	log, err := logging.New(&cfg)
	if err != nil {
		return nil, nil, err
	}
	m, err := master.Open(cmd.Context(), &cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return m, log, nil
}
