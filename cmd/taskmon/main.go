//go:build linux

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	var g globalOpts

	root := &cobra.Command{
		Use:   "taskmon",
		Short: "System resource sampler and process manager",
		Long: `taskmon samples CPU, memory, disk and network counters from /proc,
keeps about a minute of history per series, lists processes with their
CPU and memory shares, and delivers signals to processes the caller owns.

* GitHub: https://github.com/ja7ad/taskmon

Examples:
  taskmon watch -i 500ms -s 20 --csv out.csv
  taskmon ps --search chr --sort cpu --limit 10
  taskmon signal 4242 terminate
  taskmon serve --listen 127.0.0.1:8080
  taskmon top`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")

	root.AddCommand(
		newWatchCmd(&g),
		newPSCmd(&g),
		newSignalCmd(&g),
		newServeCmd(&g),
		newTopCmd(&g),
		newInfoCmd(&g),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
