package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sqlbridge/sqlbridge/db"
	"github.com/sqlbridge/sqlbridge/dburl"
)

type options struct {
	url   string
	debug bool
}

// connect opens a connection from --url or DATABASE_URL.
func (o *options) connect(ctx context.Context) (*db.Connection, error) {
	url := o.url
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("no database URL: pass --url or set DATABASE_URL")
	}
	return dburl.Open(ctx, url)
}

func newQueryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query and print the result rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			rs, err := conn.ExecuteQuery(ctx, args[0])
			if err != nil {
				return err
			}
			defer rs.Close()
			return renderResultSet(rs)
		},
	}
}

func newExecCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a statement without result rows and report rows changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			stmt, err := conn.Prepare(ctx, args[0])
			if err != nil {
				return err
			}
			defer stmt.Close()
			if err := stmt.Execute(ctx); err != nil {
				return err
			}
			color.Green("OK, %d row(s) changed", stmt.RowsChanged())
			return nil
		},
	}
}

func newPingCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Verify the database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := conn.Ping(ctx); err != nil {
				return err
			}
			color.Green("OK")
			return nil
		},
	}
}

func newSchemesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schemes",
		Short: "List registered backend URL schemes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range dburl.Schemes() {
				fmt.Println(s)
			}
			return nil
		},
	}
}

// renderResultSet prints the rows as a table. SQL NULL is shown dimmed
// to keep it distinct from an empty string.
func renderResultSet(rs *db.ResultSet) error {
	null := color.New(color.Faint).Sprint("NULL")

	header := make([]string, rs.ColumnCount())
	for i := 1; i <= rs.ColumnCount(); i++ {
		name, _ := rs.ColumnName(i)
		header[i-1] = name
	}
	data := pterm.TableData{header}
	rows := 0
	for {
		ok, err := rs.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		row := make([]string, rs.ColumnCount())
		for i := 1; i <= rs.ColumnCount(); i++ {
			isNull, err := rs.IsNull(i)
			if err != nil {
				return err
			}
			if isNull {
				row[i-1] = null
				continue
			}
			row[i-1], err = rs.GetString(i)
			if err != nil {
				return err
			}
		}
		data = append(data, row)
		rows++
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	fmt.Printf("(%d row(s))\n", rows)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sqlbridge %s (commit: %s)\n", Version, Commit)
		},
	}
}
