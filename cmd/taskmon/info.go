//go:build linux

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/spf13/cobra"

	"github.com/ja7ad/taskmon/pkg/history"
	"github.com/ja7ad/taskmon/pkg/system/proc"
	"github.com/ja7ad/taskmon/pkg/types"
)

func newInfoCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show host details and the effective sampling settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			printInfo(cmd.Context(), os.Stdout, a)
			return nil
		},
	}
}

// hostSummary never fails; unknown fields print as "-".
func hostSummary(ctx context.Context, a *app) (hostname, kernel, platform string, uptime time.Duration) {
	hostname, kernel, platform = "-", "-", "-"
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		a.log.Debug("host info", "err", err)
		return
	}
	hostname, kernel = info.Hostname, info.KernelVersion
	platform = fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
	uptime = time.Duration(info.Uptime) * time.Second
	return
}

func printBanner(ctx context.Context, out io.Writer, a *app) {
	hostname, kernel, _, _ := hostSummary(ctx, a)
	mem := "-"
	if total, err := a.fs.MemTotalBytes(); err == nil {
		mem = types.Bytes(total).Humanized()
	}
	fmt.Fprintf(out, _console, hostname, kernel, mem, a.cfg.Interval, time.Now().Format("2006-01-02 15:04:05"))
}

func printInfo(ctx context.Context, out io.Writer, a *app) {
	hostname, kernel, platform, uptime := hostSummary(ctx, a)
	mem := "-"
	if total, err := a.fs.MemTotalBytes(); err == nil {
		mem = types.Bytes(total).Humanized()
	}
	fmt.Fprintf(out, "Host:             %s\n", hostname)
	fmt.Fprintf(out, "Platform:         %s\n", platform)
	fmt.Fprintf(out, "Kernel:           %s\n", kernel)
	fmt.Fprintf(out, "Uptime:           %s\n", uptime)
	fmt.Fprintf(out, "Memory:           %s\n", mem)
	fmt.Fprintf(out, "Proc root:        %s\n", a.fs.Root())
	fmt.Fprintf(out, "Clock ticks:      %d/s\n", proc.ClockTicks())
	fmt.Fprintf(out, "Page size:        %s\n", types.Bytes(proc.PageSize()).Humanized())
	fmt.Fprintf(out, "Interval:         %s\n", a.cfg.Interval)
	fmt.Fprintf(out, "History capacity: %d points\n", history.CapacityFor(a.cfg.Interval))
	fmt.Fprintf(out, "Command cache:    %t (ttl %s)\n", a.cfg.CommandCache.Enabled, a.cfg.CommandCache.TTL)
	fmt.Fprintf(out, "Caller uid:       %d\n", os.Geteuid())
}

const _console = `taskmon - system resource sampler

       Host: %s
       Kernel: %s
       Mem: %s
       Interval: %s

telemetry as of %s:

`
