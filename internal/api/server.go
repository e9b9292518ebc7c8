// SPDX-License-Identifier: MIT

// Package api serves the aggregated playlist, the retained EPG and the
// status/trigger endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tvh2g/tvh2g/internal/cache"
	"github.com/tvh2g/tvh2g/internal/config"
	"github.com/tvh2g/tvh2g/internal/log"
	"github.com/tvh2g/tvh2g/internal/tvheadend"
)

// Job identifiers used with the Schedule interface.
const (
	JobPlaylist = "playlist"
	JobEPG      = "epg"
)

// Runner triggers a pipeline run synchronously. Implemented by jobs.Runner.
type Runner interface {
	RefreshPlaylist(ctx context.Context) error
	RefreshEPG(ctx context.Context) error
}

// Schedule exposes the scheduler collaborator's next-run times without
// coupling this package to a particular timer implementation.
type Schedule interface {
	NextRun(job string) (time.Time, bool)
}

// Server wires the HTTP surface. All artifact reads go through the cache
// store's immutable snapshots.
type Server struct {
	cfg      config.Config
	store    *cache.Store
	runner   Runner
	schedule Schedule
	client   *tvheadend.Client
	started  time.Time
	logger   zerolog.Logger
}

func New(cfg config.Config, store *cache.Store, runner Runner, schedule Schedule, client *tvheadend.Client) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		runner:   runner,
		schedule: schedule,
		client:   client,
		started:  time.Now(),
		logger:   log.WithComponent("api"),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(120, time.Minute))
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/playlist.m3u", s.handlePlaylist)
	r.Get("/epg.xml", s.handleEPG)
	r.Get("/manualplaylistrefresh", s.handlePlaylistRefresh)
	r.Get("/manualepgrefresh", s.handleEPGRefresh)
	r.Get("/server_status", s.handleServerStatus)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
