package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aberic/george/internal/clitext"
)

func newPageCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "page", Short: "manage in-memory pages"}
	cmd.AddCommand(
		newPageListCmd(),
		newPageCreateCmd(),
		newPageInfoCmd(),
		newPageModifyCmd(),
		newPageRemoveCmd(),
		newPagePutCmd(false),
		newPagePutCmd(true),
		newPageGetCmd(),
		newPageDelCmd(),
	)
	return cmd
}

func newPagePutCmd(force bool) *cobra.Command {
	use, short := "put NAME KEY VALUE_JSON", "insert a new entry, failing if the key already holds a value"
	if force {
		use, short = "set NAME KEY VALUE_JSON", "insert or overwrite an entry unconditionally"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			p, err := m.Page(args[0])
			if err != nil {
				return err
			}
			if err := p.Put(cmd.Context(), args[1], []byte(args[2]), force); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "stored")
			return nil
		},
	}
}

func newPageGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME KEY",
		Short: "read one entry from a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			p, err := m.Page(args[0])
			if err != nil {
				return err
			}
			value, err := p.Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(value))
			return nil
		},
	}
}

func newPageDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del NAME KEY",
		Short: "delete one entry from a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			p, err := m.Page(args[0])
			if err != nil {
				return err
			}
			if err := p.Remove(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "removed")
			return nil
		},
	}
}

func newPageListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list every page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			table := clitext.NewTable("NAME", "COMMENT", "SIZE_HINT_MB", "TTL_SECS", "CREATED")
			for name, p := range m.Pages() {
				table.Row(name, p.Comment(), fmt.Sprint(p.SizeHintMB()), fmt.Sprint(p.TTLSecs()),
					p.CreateTime().Format("2006-01-02 15:04:05"))
			}
			return table.WriteTo(os.Stdout)
		},
	}
}

func newPageCreateCmd() *cobra.Command {
	var comment string
	var sizeHintMB int
	var ttlSecs int64
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "create a new page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			if _, err := m.CreatePage(cmd.Context(), args[0], comment, sizeHintMB, ttlSecs); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "created")
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "page comment")
	cmd.Flags().IntVar(&sizeHintMB, "size-hint-mb", 0, "advisory size hint in MB, 0 for unbounded")
	cmd.Flags().Int64Var(&ttlSecs, "ttl-secs", 0, "entry lifetime in seconds, 0 for permanent")
	return cmd
}

func newPageInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info NAME",
		Short: "show one page's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			p, err := m.Page(args[0])
			if err != nil {
				return err
			}
			table := clitext.NewTable("NAME", "COMMENT", "SIZE_HINT_MB", "TTL_SECS", "CREATED")
			table.Row(p.Name(), p.Comment(), fmt.Sprint(p.SizeHintMB()), fmt.Sprint(p.TTLSecs()),
				p.CreateTime().Format("2006-01-02 15:04:05"))
			return table.WriteTo(os.Stdout)
		},
	}
}

func newPageModifyCmd() *cobra.Command {
	var newName, newComment string
	cmd := &cobra.Command{
		Use:   "modify NAME",
		Short: "rename a page and/or change its comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			p, err := m.Page(args[0])
			if err != nil {
				return err
			}
			if newName == "" {
				newName = p.Name()
			}
			if err := p.Modify(newName, newComment); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "modified")
			return nil
		},
	}
	cmd.Flags().StringVar(&newName, "new-name", "", "new page name")
	cmd.Flags().StringVar(&newComment, "new-comment", "", "new page comment")
	return cmd
}

func newPageRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "forget a page's in-memory handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMaster(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			if err := m.RemovePage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "removed")
			return nil
		},
	}
}
