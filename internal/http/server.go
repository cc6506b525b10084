package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kakeibo/internal/backend"
	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/middleware/ratelimit"
	"kakeibo/internal/middleware/security"
	"kakeibo/internal/middleware/trace"
	"kakeibo/internal/services"
	"kakeibo/internal/storage"
)

// PresetStore persists named CSV column mappings.
type PresetStore interface {
	SavePreset(ctx context.Context, name string, m core.ColumnMapping) (storage.Preset, error)
	GetPreset(ctx context.Context, name string) (storage.Preset, error)
	ListPresets(ctx context.Context) ([]storage.Preset, error)
	RenamePreset(ctx context.Context, oldName, newName string) error
	DeletePreset(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the server. Presets may be nil.
type Deps struct {
	Ledger             *services.LedgerService
	Workbooks          backend.Opener
	Presets            PresetStore
	Logger             *log.Logger
	APIKey             string
	RateLimitPerMinute int
	// CORSOrigins lists the browser origins admitted, "*" for any.
	// Empty disables CORS headers.
	CORSOrigins []string
}

type Server struct {
	http.Server
	ledger    *services.LedgerService
	workbooks backend.Opener
	presets   PresetStore
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = log.New(log.DefaultConfig())
	}
	clientIP := security.NewClientIP()

	s := &Server{
		ledger:    d.Ledger,
		workbooks: d.Workbooks,
		presets:   d.Presets,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: d.RateLimitPerMinute}),
		tracer:    trace.NewMiddleware(clientIP.Extract),
	}

	api := func(h http.HandlerFunc) http.Handler {
		var wrapped http.Handler = h
		wrapped = security.APIKey(d.APIKey, nil, writeUnauthorized)(wrapped)
		wrapped = s.limiter.Middleware(clientIP.Extract, writeRateLimited)(wrapped)
		return wrapped
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("POST /analyze", api(s.handleAnalyze))
	mux.Handle("POST /save", api(s.handleSave))
	mux.Handle("POST /search", api(s.handleSearch))
	mux.Handle("POST /analyze_csv", api(s.handleAnalyzeCSV))
	mux.Handle("POST /save_csv", api(s.handleSaveCSV))

	mux.Handle("GET /csv_presets", api(s.handleListPresets))
	mux.Handle("POST /csv_presets", api(s.handleCreatePreset))
	mux.Handle("GET /csv_presets/{name}", api(s.handleGetPreset))
	mux.Handle("PUT /csv_presets/{name}", api(s.handleUpdatePreset))
	mux.Handle("DELETE /csv_presets/{name}", api(s.handleDeletePreset))

	var handler http.Handler = mux
	handler = log.ComponentMiddleware(log.ComponentHTTP)(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = log.Middleware(d.Logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	if cors := security.NewCORSMiddleware(security.DefaultCORSConfig(d.CORSOrigins)); cors.Enabled() {
		handler = cors.Middleware(handler)
	}
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Receipt extraction can take a while per image.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"workbook": "ok"}
	status := http.StatusOK
	if err := s.workbooks.Ready(ctx); err != nil {
		checks["workbook"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if s.presets != nil {
		checks["presets"] = "ok"
		if err := s.presets.Ping(ctx); err != nil {
			checks["presets"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, checks)
}
