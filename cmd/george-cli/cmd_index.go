package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aberic/george/internal/clitext"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
)

func parseEngine(s string) (ge.Engine, error) {
	switch s {
	case "disk":
		return ge.EngineDisk, nil
	case "increment":
		return ge.EngineIncrement, nil
	case "sequence":
		return ge.EngineSequence, nil
	case "memory":
		return ge.EngineNone, nil
	default:
		return 0, fmt.Errorf("unknown engine %q (want disk, increment, sequence, or memory)", s)
	}
}

func parseKeyType(s string) (index.KeyType, error) {
	switch s {
	case "string":
		return index.KeyTypeString, nil
	case "u64":
		return index.KeyTypeU64, nil
	case "i64":
		return index.KeyTypeI64, nil
	case "f64":
		return index.KeyTypeF64, nil
	case "bool":
		return index.KeyTypeBool, nil
	default:
		return 0, fmt.Errorf("unknown key type %q (want string, u64, i64, f64, or bool)", s)
	}
}

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "index", Short: "manage indexes on a view"}
	cmd.AddCommand(newIndexListCmd(), newIndexCreateCmd())
	return cmd
}

func newIndexListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list DATABASE VIEW",
		Short: "list every index on a view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			db, err := m.Database(args[0])
			if err != nil {
				return err
			}
			v, err := db.View(args[1])
			if err != nil {
				return err
			}
			table := clitext.NewTable("NAME", "ENGINE", "KEY_TYPE", "PRIMARY", "UNIQUE", "NULL")
			for name, idx := range v.Indexes() {
				table.Row(name, idx.Engine().String(), idx.KeyType().String(),
					fmt.Sprint(idx.Primary()), fmt.Sprint(idx.Unique()), fmt.Sprint(idx.Null()))
			}
			return table.WriteTo(os.Stdout)
		},
	}
}

func newIndexCreateCmd() *cobra.Command {
	var engineName, keyTypeName string
	var primary, unique, null bool
	cmd := &cobra.Command{
		Use:   "create DATABASE VIEW NAME",
		Short: "add a new index to a view",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := parseEngine(engineName)
			if err != nil {
				return err
			}
			keyType, err := parseKeyType(keyTypeName)
			if err != nil {
				return err
			}

			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			db, err := m.Database(args[0])
			if err != nil {
				return err
			}
			v, err := db.View(args[1])
			if err != nil {
				return err
			}
			if err := v.CreateIndex(cmd.Context(), args[2], engine, keyType, primary, unique, null); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "created")
			return nil
		},
	}
	cmd.Flags().StringVar(&engineName, "engine", "disk", "index engine: disk, increment, sequence, or memory")
	cmd.Flags().StringVar(&keyTypeName, "key-type", "string", "key type: string, u64, i64, f64, or bool")
	cmd.Flags().BoolVar(&primary, "primary", false, "mark this index primary")
	cmd.Flags().BoolVar(&unique, "unique", false, "reject duplicate keys unless forced")
	cmd.Flags().BoolVar(&null, "null", true, "allow records missing this field to skip the index")
	return cmd
}
