// Package server exposes the layout pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/layout   lay out a graph, optionally rendering it
//	GET  /healthz     liveness probe
//
// A layout request carries the graph in the JSON description format of
// [strataio.ReadGraph] together with layout options:
//
//	{
//	  "graph":   {"nodes": [...], "edges": [...]},
//	  "options": {"direction": "down", "routing": "orthogonal"},
//	  "format":  "svg"
//	}
//
// Without a format, or with "json", the response is the layout result. Any
// other format from [pipeline.ValidFormats] returns the rendered artifact.
// Results are cached through the [pipeline.Runner]; the X-Cache response
// header reports "hit" or "miss".
//
// Every response carries an X-Request-ID header, taken from the request when
// present and generated otherwise.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/strata/pkg/buildinfo"
	"github.com/matzehuels/strata/pkg/errors"
	strataio "github.com/matzehuels/strata/pkg/io"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultTimeout      = 60 * time.Second
	DefaultMaxBodyBytes = 8 << 20
)

// RequestIDHeader is the header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// Config configures a [Server].
type Config struct {
	// Runner executes layouts. Nil means an uncached runner.
	Runner *pipeline.Runner
	// Logger receives request logs. Nil means log.Default().
	Logger *log.Logger
	// Timeout bounds the handling of one request.
	Timeout time.Duration
	// MaxBodyBytes limits the size of a request body.
	MaxBodyBytes int64
}

// Server serves the layout API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	timeout time.Duration
	maxBody int64
}

// New creates a server, filling unset configuration with defaults.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		runner:  cfg.Runner,
		logger:  cfg.Logger,
		timeout: cfg.Timeout,
		maxBody: cfg.MaxBodyBytes,
	}
}

// Handler returns the router with all routes and middleware registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/layout", s.handleLayout)
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	Graph   json.RawMessage `json:"graph"`
	Options layout.Options  `json:"options"`
	// Format selects the response body; empty means the JSON result.
	Format string `json:"format,omitempty"`
	// Ports marks ports in SVG output.
	Ports bool `json:"ports,omitempty"`
	// Detailed adds layers and orders to Graphviz labels.
	Detailed bool `json:"detailed,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("request_id", RequestID(ctx))

	var req LayoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if len(req.Graph) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request has no graph"))
		return
	}
	format := req.Format
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	g, err := strataio.ReadGraph(bytes.NewReader(req.Graph))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req.Options.Logger = logger
	res, hit, err := s.runner.Layout(ctx, g, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, artifactHit, err := s.runner.Render(ctx, res, pipeline.RenderOptions{
		Format:   format,
		Ports:    req.Ports,
		Detailed: req.Detailed,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	logger.Debug("layout served",
		"nodes", res.Stats.Nodes, "edges", res.Stats.Edges, "format", format, "cached", hit)
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Cache", cacheStatus(hit && artifactHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// writeError maps err to a status code. Input errors are the caller's fault
// and are reported verbatim; anything else is logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	id := RequestID(r.Context())
	status := statusOf(err)
	body := ErrorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err)), RequestID: id}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", id, "path", r.URL.Path, "err", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func statusOf(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeCanceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
