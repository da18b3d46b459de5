// Package api serves telemetry snapshots, the process table and signal
// delivery over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ja7ad/taskmon/pkg/process"
	"github.com/ja7ad/taskmon/pkg/procsig"
	"github.com/ja7ad/taskmon/pkg/telemetry"
)

// Metrics is the sampler surface the API reads from.
type Metrics interface {
	Latest() (telemetry.Snapshot, bool)
	Sample() (telemetry.Snapshot, error)
}

// Processes lists process rows. *process.Catalog implements it.
type Processes interface {
	List(q *process.Query) ([]process.Row, error)
}

// Signaller delivers signals. *procsig.Sender implements it.
type Signaller interface {
	Send(pid int, kind procsig.Kind) error
}

// Options tunes a Server. Zero fields take the defaults noted.
type Options struct {
	SignalRate  float64       // signal requests per second per client, default 1
	SignalBurst int           // default 5
	ReadTimeout time.Duration // header read timeout, default 10s
	Logger      *slog.Logger
}

// Server serves the metrics, process and signal API over HTTP.
type Server struct {
	metrics Metrics
	procs   Processes
	signals Signaller
	opts    Options
	log     *slog.Logger

	hub     *Hub
	limiter *RateLimiter
	engine  *gin.Engine
}

// New builds a Server and registers its routes.
func New(m Metrics, p Processes, s Signaller, opts Options) *Server {
	if opts.SignalRate <= 0 {
		opts.SignalRate = 1
	}
	if opts.SignalBurst <= 0 {
		opts.SignalBurst = 5
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	srv := &Server{
		metrics: m,
		procs:   p,
		signals: s,
		opts:    opts,
		log:     log,
		hub:     NewHub(log),
		limiter: NewRateLimiter(rate.Limit(opts.SignalRate), opts.SignalBurst),
	}
	srv.engine = srv.routes()
	return srv
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	api := r.Group("/api")
	api.GET("/healthz", s.healthz)
	api.GET("/metrics", s.getMetrics)
	api.GET("/metrics/stream", s.streamMetrics)
	api.GET("/processes", s.listProcesses)
	api.POST("/processes/:pid/signal", s.limiter.Middleware(), s.signalProcess)
	return r
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler { return s.engine }

// Hub returns the websocket fan-out used by Publish.
func (s *Server) Hub() *Hub { return s.hub }

// Publish pushes snap to every stream subscriber.
func (s *Server) Publish(snap telemetry.Snapshot) {
	b, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("encode snapshot", "err", err)
		return
	}
	s.hub.Broadcast(b)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully and disconnects stream clients.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.opts.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	s.log.Info("api listening", "addr", addr)

	prune := time.NewTicker(5 * time.Minute)
	defer prune.Stop()

	for {
		select {
		case err := <-errCh:
			s.hub.Close()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-prune.C:
			s.limiter.Prune(10 * time.Minute)
		case <-ctx.Done():
			s.hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		}
	}
}
