package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aberic/george/internal/clitext"
	"github.com/aberic/george/pkg/servicepb"
)

func newDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "database", Short: "manage databases"}
	cmd.AddCommand(
		newDatabaseListCmd(),
		newDatabaseCreateCmd(),
		newDatabaseInfoCmd(),
		newDatabaseModifyCmd(),
		newDatabaseRemoveCmd(),
	)
	return cmd
}

func newDatabaseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list every database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			resp := servicepb.DatabaseListResponse{Header: servicepb.Header{Status: servicepb.StatusOk}}
			for name, db := range m.Databases() {
				resp.Databases = append(resp.Databases, servicepb.DatabaseInfo{
					Name: name, Comment: db.Comment(), CreateTime: db.CreateTime(),
					ViewCount: len(db.Views()),
				})
			}

			table := clitext.NewTable("NAME", "COMMENT", "VIEWS", "CREATED")
			for _, d := range resp.Databases {
				table.Row(d.Name, d.Comment, fmt.Sprint(d.ViewCount), d.CreateTime.Format("2006-01-02 15:04:05"))
			}
			return table.WriteTo(os.Stdout)
		},
	}
}

func newDatabaseCreateCmd() *cobra.Command {
	var req servicepb.DatabaseCreateRequest
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "create a new database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			if _, err := m.CreateDatabase(cmd.Context(), req.Name, req.Comment); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "created")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Comment, "comment", "", "database comment")
	return cmd
}

func newDatabaseInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info NAME",
		Short: "show one database's metadata",
		Args:  cobra.ExactArgs(1),
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
			table := clitext.NewTable("NAME", "COMMENT", "VIEWS", "CREATED")
			table.Row(db.Name(), db.Comment(), fmt.Sprint(len(db.Views())), db.CreateTime().Format("2006-01-02 15:04:05"))
			return table.WriteTo(os.Stdout)
		},
	}
}

func newDatabaseModifyCmd() *cobra.Command {
	var newName, newComment string
	cmd := &cobra.Command{
		Use:   "modify NAME",
		Short: "rename a database and/or change its comment",
		Args:  cobra.ExactArgs(1),
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
			if newName == "" {
				newName = db.Name()
			}
			if err := db.Modify(newName, newComment); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "modified")
			return nil
		},
	}
	cmd.Flags().StringVar(&newName, "new-name", "", "new database name")
	cmd.Flags().StringVar(&newComment, "new-comment", "", "new database comment")
	return cmd
}

func newDatabaseRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "forget a database's in-memory handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			if err := m.RemoveDatabase(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "removed")
			return nil
		},
	}
}
