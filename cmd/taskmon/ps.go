//go:build linux

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ja7ad/taskmon/pkg/process"
)

type psOpts struct {
	search string
	sort   string
	dir    string
	limit  int
	offset int
	json   bool
}

func newPSCmd(g *globalOpts) *cobra.Command {
	var o psOpts
	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List processes with CPU and memory shares",
		Long: `List processes from one scan of /proc. Without any filter flag the
busiest 300 processes are shown, highest CPU first.

--dir asc reverses the key's natural order: cpu and mem become ascending,
pid, user and command become descending.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			q, err := o.query(cmd)
			if err != nil {
				return err
			}
			rows, err := a.catalog().List(q)
			if err != nil {
				return err
			}
			if o.json {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printRows(os.Stdout, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.search, "search", "", "case-insensitive substring of command or user")
	cmd.Flags().StringVar(&o.sort, "sort", "", "sort key: cpu|mem|pid|user|command")
	cmd.Flags().StringVar(&o.dir, "dir", "", "sort direction: asc|desc")
	cmd.Flags().IntVarP(&o.limit, "limit", "n", 0, "maximum rows to print")
	cmd.Flags().IntVar(&o.offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&o.json, "json", false, "print rows as JSON")
	return cmd
}

// query returns nil when no query flag was set so the catalog applies its
// default.
func (o psOpts) query(cmd *cobra.Command) (*process.Query, error) {
	changed := false
	for _, name := range []string{"search", "sort", "dir", "limit", "offset"} {
		changed = changed || cmd.Flags().Changed(name)
	}
	if !changed {
		return nil, nil
	}

	key, err := process.ParseSortKey(o.sort)
	if err != nil {
		return nil, err
	}
	dir, err := process.ParseSortDir(o.dir)
	if err != nil {
		return nil, err
	}
	if o.limit < 0 || o.offset < 0 {
		return nil, fmt.Errorf("limit and offset must be >= 0")
	}
	q := &process.Query{Search: o.search, SortBy: key, SortDir: dir, Offset: o.offset}
	if cmd.Flags().Changed("limit") {
		limit := o.limit
		q.Limit = &limit
	}
	return q, nil
}

func printRows(out io.Writer, rows []process.Row) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tUSER\tCPU%\tMEM%\tCOMMAND")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%s\n", r.PID, r.User, r.CPUPercent, r.MemPercent, r.Command)
	}
	tw.Flush()
}
