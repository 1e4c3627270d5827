// Package server implements the sync service: an HTTP endpoint that
// turns annotation batches into GitHub issues.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/annosync/internal/core/logging"
	"github.com/colonyops/annosync/internal/server/github"
)

// Config holds the serve-side settings.
type Config struct {
	Addr string

	// SharedSecret, when set, is required on every sync request.
	SharedSecret string

	// Token is the GitHub token issues are created with. The server
	// starts without one, but sync requests fail until it is set.
	Token string

	// APIURL and GraphQLURL override the GitHub endpoints for
	// Enterprise deployments. Empty means github.com.
	APIURL     string
	GraphQLURL string
}

// Server hosts the sync endpoint.
type Server struct {
	cfg    Config
	github *github.Client
	log    zerolog.Logger
}

func New(cfg Config) *Server {
	return &Server{
		cfg:    cfg,
		github: github.NewWithURLs(cfg.Token, cfg.APIURL, cfg.GraphQLURL),
		log:    logging.Component("server"),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync", s.handleSync)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpsrv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("sync service listening")
		if err := httpsrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info().Msg("shutting down sync service")
	return httpsrv.Shutdown(shutdownCtx)
}
