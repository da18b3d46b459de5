//go:build linux

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ja7ad/taskmon/pkg/telemetry"
	"github.com/ja7ad/taskmon/pkg/types"
)

type watchOpts struct {
	samples  int
	warmup   int
	interval time.Duration
	pretty   bool

	csvPath  string
	jsonPath string
	htmlPath string
}

func newWatchCmd(g *globalOpts) *cobra.Command {
	var o watchOpts
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print system telemetry every interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			if err := a.intervalFrom(cmd, o.interval); err != nil {
				return err
			}
			if !cmd.Flags().Changed("pretty") {
				o.pretty = term.IsTerminal(int(os.Stdout.Fd()))
			}
			return runWatch(cmd.Context(), a, o, os.Stdout)
		},
	}
	cmd.Flags().BoolVar(&o.pretty, "pretty", true, "format output as a table instead of CSV-like lines (default: on for terminals)")
	cmd.Flags().IntVar(&o.warmup, "warmup", 1, "number of initial samples to skip; the first sample has no rates")
	cmd.Flags().IntVarP(&o.samples, "samples", "s", 0, "number of samples to print (0 = run until Ctrl-C)")
	cmd.Flags().DurationVarP(&o.interval, "interval", "i", time.Second, "sampling interval (e.g. 1s, 500ms)")
	cmd.Flags().StringVar(&o.csvPath, "csv", "", "write per-tick rows to CSV file")
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "write per-tick rows to an NDJSON file")
	cmd.Flags().StringVar(&o.htmlPath, "html", "", "write per-tick rows and a summary to an HTML file on exit")
	return cmd
}

func runWatch(ctx context.Context, a *app, o watchOpts, out io.Writer) error {
	if o.pretty {
		printBanner(ctx, out, a)
	}

	rec, err := openRecorder(o.csvPath, o.jsonPath, o.htmlPath)
	if err != nil {
		return err
	}

	var tw *tabwriter.Writer
	if o.pretty {
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		printTableHeader(tw)
	} else {
		fmt.Fprintln(out, "# time, cpu%, ram%, swap%, disk_read_bps, disk_write_bps, net_rx_bps, net_tx_bps")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := a.sampler()
	seen, printed := 0, 0
	s.Run(ctx, func(snap telemetry.Snapshot, err error) {
		if err != nil {
			a.log.Warn("sample error", "err", err)
			return
		}
		seen++
		if seen <= o.warmup {
			return
		}

		r := newRecord(snap)
		if tw != nil {
			printTableRow(tw, r)
		} else {
			printCsvLike(out, r)
		}
		if err := rec.add(r); err != nil {
			a.log.Warn("write record", "err", err)
		}

		printed++
		if o.samples > 0 && printed >= o.samples {
			cancel()
		}
	})

	if err := rec.close(); err != nil {
		return err
	}

	avg := summarize(rec.rows)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "taskmon avg (over %d samples of ~%s):\n", len(rec.rows), a.cfg.Interval)
	fmt.Fprintf(out, "- cpu:        %s\n", types.Percent(avg.CPUPercent))
	fmt.Fprintf(out, "- ram:        %s\n", types.Percent(avg.RAMPercent))
	fmt.Fprintf(out, "- disk read:  %s\n", types.Rate(avg.DiskReadBps).Humanized())
	fmt.Fprintf(out, "- disk write: %s\n", types.Rate(avg.DiskWriteBps).Humanized())
	fmt.Fprintf(out, "- net rx:     %s\n", types.Rate(avg.NetRxBps).Humanized())
	fmt.Fprintf(out, "- net tx:     %s\n", types.Rate(avg.NetTxBps).Humanized())
	fmt.Fprintln(out)
	return nil
}

func printTableHeader(tw *tabwriter.Writer) {
	fmt.Fprintln(tw, "TIME\tCPU\tRAM\tSWAP\tDISK R\tDISK W\tNET RX\tNET TX")
	fmt.Fprintln(tw, "----\t---\t---\t----\t------\t------\t------\t------")
	tw.Flush()
}

func printTableRow(tw *tabwriter.Writer, r record) {
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		r.At.Format("2006-01-02 15:04:05"),
		types.Percent(r.CPUPercent), types.Percent(r.RAMPercent), types.Percent(r.SwapPercent),
		types.Rate(r.DiskReadBps).Humanized(), types.Rate(r.DiskWriteBps).Humanized(),
		types.Rate(r.NetRxBps).Humanized(), types.Rate(r.NetTxBps).Humanized(),
	)
	tw.Flush()
}

func printCsvLike(out io.Writer, r record) {
	fmt.Fprintf(out, "%s, %.2f, %.2f, %.2f, %.0f, %.0f, %.0f, %.0f\n",
		r.At.Format(time.RFC3339), r.CPUPercent, r.RAMPercent, r.SwapPercent,
		r.DiskReadBps, r.DiskWriteBps, r.NetRxBps, r.NetTxBps)
}
