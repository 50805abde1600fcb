package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aberic/george/internal/clitext"
	"github.com/aberic/george/pkg/condition"
	"github.com/aberic/george/pkg/master"
	"github.com/aberic/george/pkg/record"
	"github.com/aberic/george/pkg/view"
)

// viewHandle bundles an opened Master with one of its views, so a data
// subcommand can close the Master after a single operation without every
// caller re-deriving it from the view.
type viewHandle struct {
	m *master.Master
	v *view.View
}

func (h *viewHandle) close() { _ = h.m.Close() }

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "data", Short: "put, get, and query records within a view"}
	cmd.AddCommand(
		newDataPutCmd(false),
		newDataPutCmd(true),
		newDataGetCmd(),
		newDataGetByIndexCmd(),
		newDataRemoveCmd(),
		newDataSelectCmd(),
		newDataDeleteCmd(),
	)
	return cmd
}

func resolveView(cmd *cobra.Command, databaseName, viewName string) (*viewHandle, error) {
	m, _, err := openMaster(cmd)
	if err != nil {
		return nil, err
	}
	db, err := m.Database(databaseName)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	v, err := db.View(viewName)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return &viewHandle{m: m, v: v}, nil
}

func newDataPutCmd(force bool) *cobra.Command {
	use, short := "put DATABASE VIEW KEY VALUE_JSON", "insert a new record, failing on a key collision"
	if force {
		use, short = "set DATABASE VIEW KEY VALUE_JSON", "insert or overwrite a record unconditionally"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(args[3])) {
				return fmt.Errorf("value is not valid JSON")
			}
			h, err := resolveView(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			defer h.close()

			rec, err := h.v.Put(cmd.Context(), args[2], []byte(args[3]), force)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "stored key=%s increment=%d\n", rec.Key, rec.Increment)
			return nil
		},
	}
}

func newDataGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get DATABASE VIEW KEY",
		Short: "resolve a record through the view's primary index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := resolveView(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			defer h.close()

			rec, err := h.v.Get(cmd.Context(), args[2])
			if err != nil {
				return err
			}
			return printRecord(rec)
		},
	}
}

func newDataGetByIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-by-index DATABASE VIEW INDEX KEY",
		Short: "resolve a record through a named secondary index",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := resolveView(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			defer h.close()

			rec, err := h.v.GetByIndex(cmd.Context(), args[2], args[3])
			if err != nil {
				return err
			}
			return printRecord(rec)
		},
	}
}

func newDataRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove DATABASE VIEW KEY",
		Short: "remove a record by its primary key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := resolveView(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			defer h.close()

			if err := h.v.Del(cmd.Context(), args[2]); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "removed")
			return nil
		},
	}
}

func newDataSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select DATABASE VIEW CONSTRAINT_JSON",
		Short: "run a constraint document against a view",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			constraint, err := condition.Parse([]byte(args[2]))
			if err != nil {
				return err
			}
			constraint.Delete = false

			h, err := resolveView(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			defer h.close()

			result, err := condition.Execute(cmd.Context(), h.v, constraint, condition.DefaultConfig())
			if err != nil {
				return err
			}
			return printRecords(result.TotalScanned, result.Values)
		},
	}
}

func newDataDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete DATABASE VIEW CONSTRAINT_JSON",
		Short: "run a constraint document against a view, removing every match",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			constraint, err := condition.Parse([]byte(args[2]))
			if err != nil {
				return err
			}
			constraint.Delete = true

			h, err := resolveView(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			defer h.close()

			result, err := condition.Execute(cmd.Context(), h.v, constraint, condition.DefaultConfig())
			if err != nil {
				return err
			}
			return printRecords(result.TotalScanned, result.Values)
		},
	}
}

func printRecord(rec record.DataReal) error {
	table := clitext.NewTable("INCREMENT", "KEY", "VALUE")
	table.Row(fmt.Sprint(rec.Increment), rec.Key, string(rec.Value))
	return table.WriteTo(os.Stdout)
}

func printRecords(totalScanned int, values []record.DataReal) error {
	table := clitext.NewTable("INCREMENT", "KEY", "VALUE")
	for _, rec := range values {
		table.Row(fmt.Sprint(rec.Increment), rec.Key, string(rec.Value))
	}
	if err := table.WriteTo(os.Stdout); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "scanned %d, matched %d\n", totalScanned, len(values))
	return nil
}
