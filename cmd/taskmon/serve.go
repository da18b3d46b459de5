//go:build linux

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/taskmon/pkg/api"
	"github.com/ja7ad/taskmon/pkg/telemetry"
)

func newServeCmd(g *globalOpts) *cobra.Command {
	var (
		listen   string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve telemetry, processes and signals over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			if err := a.intervalFrom(cmd, interval); err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				a.cfg.Server.Listen = listen
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			sampler := a.sampler()
			catalog := a.catalog()
			srv := api.New(sampler, catalog, a.sender(catalog), api.Options{
				SignalRate:  a.cfg.Server.SignalRate,
				SignalBurst: a.cfg.Server.SignalBurst,
				ReadTimeout: a.cfg.Server.ReadTimeout,
				Logger:      a.log,
			})

			ctx := cmd.Context()
			go sampler.Run(ctx, func(snap telemetry.Snapshot, err error) {
				if err != nil {
					a.log.Warn("sample error", "err", err)
					return
				}
				srv.Publish(snap)
			})
			return srv.ListenAndServe(ctx, a.cfg.Server.Listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "sampling interval")
	return cmd
}
