package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hintscan/hintscan/internal/config"
	"github.com/hintscan/hintscan/internal/database"
	"github.com/hintscan/hintscan/internal/log"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis history over a local HTTP API",
		Long: `Serve exposes the analysis history database as a read-only JSON API.

The server binds to loopback by default; there is no authentication.
Point dashboards or scripts at it to browse past analyses.

Endpoints:
  GET /health                   liveness check
  GET /api/traces               analyzed trace files
  GET /api/analyses?trace=PATH  analysis metadata, most recent first
  GET /api/analyses/{id}        full analysis report
  GET /api/analyses/{id}/rules  hint counts per rule

Environment:
  HINTSCAN_LISTEN  overrides the listen address (flag takes precedence)

Examples:
  # Serve on the default loopback address
  hintscan serve

  # Serve a specific database directory
  hintscan serve --db-dir ./hintscan-data

  # Bind elsewhere
  hintscan serve --listen 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("listen", config.DefaultListenAddress,
		"Address to bind the HTTP server to")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	// .env is optional; the serve command is often run from a data
	// directory that carries HINTSCAN_LISTEN.
	_ = godotenv.Load()

	cfg := config.NewConfig()

	listen, err := cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("listen") {
		if env := os.Getenv("HINTSCAN_LISTEN"); env != "" {
			listen = env
		}
	}
	cfg.ListenAddress = listen

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping server...")
		cancel()
	}()

	return runServe(ctx, cfg, db, logger)
}

// runServe runs the HTTP server until the context is cancelled.
func runServe(ctx context.Context, cfg *config.Config, db *database.HintDB, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           newHistoryRouter(db, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("history API listening", "address", cfg.ListenAddress)
		fmt.Fprintf(os.Stderr, "Serving analysis history on http://%s (Ctrl-C to stop)\n", cfg.ListenAddress)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestID tags every response with a fresh UUID so a client-side
// report can be matched to a server log line.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("X-Request-Id", uuid.NewString())
		next.ServeHTTP(w, req)
	})
}

// newHistoryRouter builds the read-only history API.
func newHistoryRouter(db *database.HintDB, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "hintscan"})
	})

	r.Get("/api/traces", func(w http.ResponseWriter, req *http.Request) {
		traces, err := db.ListTraceFiles(req.Context())
		if err != nil {
			logger.Error("list traces failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list traces")
			return
		}
		if traces == nil {
			traces = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"traces": traces})
	})

	r.Get("/api/analyses", func(w http.ResponseWriter, req *http.Request) {
		trace := req.URL.Query().Get("trace")
		analyses, err := db.ListAnalyses(req.Context(), trace)
		if err != nil {
			logger.Error("list analyses failed", "trace", trace, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list analyses")
			return
		}
		if analyses == nil {
			analyses = []database.AnalysisMetadata{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"analyses": analyses})
	})

	r.Get("/api/analyses/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid analysis id")
			return
		}

		report, err := db.GetReport(req.Context(), id)
		if err != nil {
			logger.Error("get report failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load analysis")
			return
		}
		if report == nil {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	r.Get("/api/analyses/{id}/rules", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid analysis id")
			return
		}

		counts, err := db.CountHintsByRule(req.Context(), id)
		if err != nil {
			logger.Error("count hints failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to count hints")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rules": counts})
	})

	return r
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Client went away
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
