//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/taskmon/pkg/config"
	"github.com/ja7ad/taskmon/pkg/process"
	"github.com/ja7ad/taskmon/pkg/procsig"
	"github.com/ja7ad/taskmon/pkg/system/proc"
	"github.com/ja7ad/taskmon/pkg/telemetry"
)

type globalOpts struct {
	configPath string
	logLevel   string
}

// app holds the resolved configuration and the components built from it.
type app struct {
	cfg config.Config
	log *slog.Logger
	fs  *proc.FS
}

func (g *globalOpts) load() (*app, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)

	return &app{cfg: cfg, log: log, fs: proc.NewFS(cfg.ProcRoot)}, nil
}

// intervalFrom applies a command's --interval flag over the config value.
func (a *app) intervalFrom(cmd *cobra.Command, flag time.Duration) error {
	if !cmd.Flags().Changed("interval") {
		return nil
	}
	if flag <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	a.cfg.Interval = flag
	return nil
}

func (a *app) sampler() *telemetry.Sampler {
	return telemetry.New(a.fs, a.cfg.Interval, telemetry.WithLogger(a.log))
}

func (a *app) catalog() *process.Catalog {
	opts := []process.CatalogOption{
		process.WithPasswd(a.cfg.Passwd),
		process.WithCatalogLogger(a.log),
	}
	if a.cfg.CommandCache.Enabled {
		opts = append(opts, process.WithCommandCache(process.NewCommandCache(a.cfg.CommandCache.TTL)))
	}
	return process.NewCatalog(a.fs, opts...)
}

// sender acts as the effective uid of this process, resolved once.
func (a *app) sender(owners procsig.OwnerLookup) *procsig.Sender {
	s := procsig.NewSender(uint32(os.Geteuid()), owners)
	s.Logger = a.log
	return s
}
