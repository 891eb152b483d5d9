package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	applog "liquiplanner/internal/log"
	"liquiplanner/internal/ledger"
	"liquiplanner/internal/middleware/ratelimit"
	"liquiplanner/internal/middleware/security"
	appweb "liquiplanner/web"
)

// Server serves the ledger UI and its JSON snapshot.
type Server struct {
	http.Server
	ledger    *ledger.Ledger
	templates *template.Template
	logger    *applog.Logger
	metrics   *metrics
	ready     func(ctx context.Context) error
	limiter   *ratelimit.Limiter
	proxied   bool
	now       func() time.Time
	started   time.Time

	unsubscribe  func()
	shutdownOnce sync.Once
}

type Option func(*Server)

func WithLogger(l *applog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithReadiness sets the check behind /readyz, typically the storage ping.
func WithReadiness(check func(ctx context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

// WithMutationLimit caps entry creations and removals per client and
// minute. Zero or less disables the limit.
func WithMutationLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: perMinute,
			Now:               func() time.Time { return s.now() },
		})
	}
}

// WithTrustedProxy takes client addresses from X-Forwarded-For and
// X-Real-IP. Without it every client is keyed by its connection address.
func WithTrustedProxy() Option {
	return func(s *Server) { s.proxied = true }
}

// WithClock sets the clock used to prefill the form date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, l *ledger.Ledger, opts ...Option) (*Server, error) {
	s := &Server{
		ledger:  l,
		logger:  applog.New(applog.DefaultConfig()),
		metrics: newMetrics(),
		now:     time.Now,
		started: time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}
	for _, o := range opts {
		o(s)
	}

	t, err := appweb.ParseTemplates(template.FuncMap{})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	static, err := appweb.Static()
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	s.metrics.set(l.Snapshot())
	s.unsubscribe = l.Subscribe(s.metrics.observe)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.proxied {
		r.Use(chimw.RealIP)
	}
	r.Use(applog.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/", s.handleIndex)
	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware(ratelimit.RemoteAddr, s.rateLimited))
		}
		r.Post("/entries", s.handleCreateEntry)
		r.Post("/entries/{id}/delete", s.handleDeleteEntry)
		r.Delete("/entries/{id}", s.handleDeleteEntry)
	})

	r.Get("/ui/months", s.handleMonths)
	r.Get("/ui/balance", s.handleBalance)
	r.Get("/api/ledger", s.handleLedgerJSON)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.With(security.StaticAssets(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Shutdown detaches from the ledger and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a named template into memory so a failure never leaves a
// half-written response.
func (s *Server) render(ctx context.Context, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Template execution failed",
			applog.FieldOperation, applog.OpRender, "template", name, applog.FieldError, err)
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) writeTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	body, err := s.render(r.Context(), name, data)
	if err != nil {
		InternalServerError("Die Seite konnte nicht angezeigt werden").Write(w)
		return
	}
	NewHTMXResponse().Status(status).BodyHTML(body).Write(w)
}
