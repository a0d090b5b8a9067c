// Package httpapi exposes the fund ledger over a JSON HTTP API.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port   int
	APIKey string // if empty, authentication is disabled
}

// Server is the HTTP API server for the fund ledger.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered. Authentication and
// request logging middleware wrap every route except the health check.
func NewServer(cfg Config, funds *FundHandler, history *HistoryHandler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/funds", funds.CreateFund)
	mux.HandleFunc("POST /api/funds/{name}/buy", funds.BuyShares)
	mux.HandleFunc("POST /api/funds/{name}/sell", funds.SellShares)
	mux.HandleFunc("POST /api/funds/{name}/valuations", funds.ValuateFund)
	mux.HandleFunc("POST /api/valuations", funds.ValuateAllFunds)
	mux.HandleFunc("GET /api/funds/{name}/composition", funds.GetComposition)

	mux.HandleFunc("GET /api/funds/{name}/valuations", history.ListValuations)
	mux.HandleFunc("GET /api/funds/{name}/valuations/latest", history.LatestValuation)
	mux.HandleFunc("GET /api/funds/{name}/operations", history.ListOperations)

	var h http.Handler = mux
	h = Auth(cfg.APIKey)(h)
	h = Logging(logger)(h)

	// Health check bypasses auth so load balancers can probe it.
	outer := http.NewServeMux()
	outer.HandleFunc("GET /api/health", handleHealth)
	outer.Handle("/", h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      outer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler, used by tests to serve requests without
// binding a port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
