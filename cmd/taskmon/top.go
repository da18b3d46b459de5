//go:build linux

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/taskmon/pkg/tui"
)

func newTopCmd(g *globalOpts) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Interactive dashboard with history sparklines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			if err := a.intervalFrom(cmd, interval); err != nil {
				return err
			}
			s := a.sampler()
			return tui.Run(s, a.catalog(), s.Interval())
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "refresh interval")
	return cmd
}
