package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aberic/george/internal/clitext"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "view", Short: "manage views within a database"}
	cmd.AddCommand(
		newViewListCmd(),
		newViewCreateCmd(),
		newViewInfoCmd(),
		newViewModifyCmd(),
		newViewRemoveCmd(),
		newViewArchiveCmd(),
		newViewRecordsCmd(),
	)
	return cmd
}

func newViewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list DATABASE",
		Short: "list every view in a database",
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
			table := clitext.NewTable("NAME", "COMMENT", "CREATED")
			for name, v := range db.Views() {
				table.Row(name, v.Comment(), v.CreateTime().Format("2006-01-02 15:04:05"))
			}
			return table.WriteTo(os.Stdout)
		},
	}
}

func newViewCreateCmd() *cobra.Command {
	var comment string
	var withIncrement bool
	cmd := &cobra.Command{
		Use:   "create DATABASE NAME",
		Short: "create a new view",
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
			if _, err := db.CreateView(cmd.Context(), args[1], comment, withIncrement); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "created")
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "view comment")
	cmd.Flags().BoolVar(&withIncrement, "with-increment", true, "create a primary increment index immediately")
	return cmd
}

func newViewInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info DATABASE NAME",
		Short: "show one view's metadata",
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
			table := clitext.NewTable("NAME", "COMMENT", "CREATED")
			table.Row(v.Name(), v.Comment(), v.CreateTime().Format("2006-01-02 15:04:05"))
			return table.WriteTo(os.Stdout)
		},
	}
}

func newViewModifyCmd() *cobra.Command {
	var newName, newComment string
	cmd := &cobra.Command{
		Use:   "modify DATABASE NAME",
		Short: "rename a view and/or change its comment",
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
			if newName == "" {
				newName = v.Name()
			}
			if err := v.Modify(newName, newComment); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "modified")
			return nil
		},
	}
	cmd.Flags().StringVar(&newName, "new-name", "", "new view name")
	cmd.Flags().StringVar(&newComment, "new-comment", "", "new view comment")
	return cmd
}

func newViewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove DATABASE NAME",
		Short: "forget a view's in-memory handle",
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
			if err := db.RemoveView(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "removed")
			return nil
		},
	}
}

func newViewArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive DATABASE NAME NEW_FILEPATH",
		Short: "rotate a view's live data file",
		Args:  cobra.ExactArgs(3),
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
			if err := v.Archive(args[2]); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "archived")
			return nil
		},
	}
}

func newViewRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records DATABASE NAME",
		Short: "list every version of a view's data",
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
			table := clitext.NewTable("VERSION", "FILEPATH", "LIVE", "ARCHIVED_AT")
			for _, r := range v.Records() {
				archivedAt := ""
				if !r.Live {
					archivedAt = r.ArchivedAt.Format("2006-01-02 15:04:05")
				}
				table.Row(fmt.Sprint(r.Version), r.Filepath, fmt.Sprint(r.Live), archivedAt)
			}
			return table.WriteTo(os.Stdout)
		},
	}
}
