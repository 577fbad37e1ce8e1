// Package server exposes grammar compilation and parsing over HTTP.
//
//	POST /v1/compile   {"grammar": "..."}
//	POST /v1/parse     {"grammar": "..." | "grammar_name": "...", "input": "...", ...}
//	GET  /v1/grammars
//	GET  /metrics
//	GET  /health
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/peg/grammar"
	"github.com/dhamidi/peg/parse"
	"github.com/dhamidi/peg/source"
)

var log = commonlog.GetLogger("peg.server")

// Option configures New.
type Option func(*Server)

// WithCacheSize bounds the number of compiled grammars kept in memory.
func WithCacheSize(n int) Option {
	return func(s *Server) {
		s.cacheSize = n
	}
}

// WithMaxDepth limits rule nesting for every parse. Zero keeps
// parse.DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(s *Server) {
		s.maxDepth = n
	}
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBody = n
	}
}

// WithGrammar registers a precompiled grammar that requests select by name.
func WithGrammar(name string, g *grammar.Grammar) Option {
	return func(s *Server) {
		s.grammars[name] = g
	}
}

// Server handles the HTTP API.
type Server struct {
	mux       *http.ServeMux
	registry  *prometheus.Registry
	metrics   *collectors
	cache     *grammarCache
	grammars  map[string]*grammar.Grammar
	cacheSize int
	maxDepth  int
	maxBody   int64
}

func New(opts ...Option) (*Server, error) {
	s := &Server{
		mux:       http.NewServeMux(),
		registry:  prometheus.NewRegistry(),
		metrics:   newCollectors(),
		grammars:  make(map[string]*grammar.Grammar),
		cacheSize: 64,
		maxBody:   16 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}

	cache, err := newGrammarCache(s.cacheSize, s.metrics)
	if err != nil {
		return nil, err
	}
	s.cache = cache
	s.metrics.registerAll(s.registry)

	s.mux.HandleFunc("POST /v1/compile", s.handleCompile)
	s.mux.HandleFunc("POST /v1/parse", s.handleParse)
	s.mux.HandleFunc("GET /v1/grammars", s.handleGrammars)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	log.Noticef("listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// CompileRequest is the body of POST /v1/compile.
type CompileRequest struct {
	Grammar string `json:"grammar"`
}

// CompileResponse lists the rules of a compiled grammar.
type CompileResponse struct {
	Rules      []string `json:"rules"`
	Start      string   `json:"start"`
	Whitespace string   `json:"whitespace,omitempty"`
}

// ParseRequest is the body of POST /v1/parse. Exactly one of Grammar and
// GrammarName must be set.
type ParseRequest struct {
	Grammar     string `json:"grammar,omitempty"`
	GrammarName string `json:"grammar_name,omitempty"`
	Start       string `json:"start,omitempty"`
	Input       string `json:"input"`
	Filename    string `json:"filename,omitempty"`
	RequireEOF  bool   `json:"require_eof,omitempty"`
	Stats       bool   `json:"stats,omitempty"`
}

// ParseResponse carries the syntax tree of a successful parse.
type ParseResponse struct {
	AST   *parse.JSONNode `json:"ast"`
	Stats *parse.Stats    `json:"stats,omitempty"`
}

// DiagnosticsResponse is returned with status 422 when the input does not
// match.
type DiagnosticsResponse struct {
	Diagnostics parse.Diagnostics `json:"diagnostics"`
}

// ErrorResponse is returned for malformed requests and grammars.
type ErrorResponse struct {
	Errors []ErrorDetail `json:"errors"`
}

type ErrorDetail struct {
	Message string           `json:"message"`
	Pos     *source.Position `json:"pos,omitempty"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if !s.decode(w, r, &req) {
		return
	}
	g, err := s.cache.compile(req.Grammar)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, CompileResponse{
		Rules:      g.Names(),
		Start:      g.Start(),
		Whitespace: g.Whitespace(),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !s.decode(w, r, &req) {
		return
	}

	g, label, err := s.grammar(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := []parse.Option{parse.WithMaxDepth(s.maxDepth)}
	if req.Start != "" {
		opts = append(opts, parse.WithStart(req.Start))
	}
	if req.Filename != "" {
		opts = append(opts, parse.WithFilename(req.Filename))
	}
	if req.RequireEOF {
		opts = append(opts, parse.RequireEOF())
	}
	var stats *parse.Stats
	if req.Stats {
		stats = &parse.Stats{}
		opts = append(opts, parse.WithStats(stats))
	}

	start := time.Now()
	tree, err := parse.Parse(g, []byte(req.Input), opts...)
	s.metrics.parseDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	s.metrics.inputBytes.Observe(float64(len(req.Input)))

	var ds parse.Diagnostics
	switch {
	case errors.As(err, &ds):
		s.metrics.parses.WithLabelValues(label, "error").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, DiagnosticsResponse{Diagnostics: ds})
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
	default:
		s.metrics.parses.WithLabelValues(label, "ok").Inc()
		writeJSON(w, http.StatusOK, ParseResponse{AST: tree.JSON(tree.Root), Stats: stats})
	}
}

// grammar resolves the grammar of a parse request and a metrics label for it.
func (s *Server) grammar(req ParseRequest) (*grammar.Grammar, string, error) {
	switch {
	case req.Grammar != "" && req.GrammarName != "":
		return nil, "", errors.New("grammar and grammar_name are mutually exclusive")
	case req.GrammarName != "":
		g, ok := s.grammars[req.GrammarName]
		if !ok {
			return nil, "", errors.New("unknown grammar " + req.GrammarName)
		}
		return g, req.GrammarName, nil
	case req.Grammar != "":
		g, err := s.cache.compile(req.Grammar)
		return g, "inline", err
	}
	return nil, "", errors.New("grammar or grammar_name is required")
}

func (s *Server) handleGrammars(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.grammars))
	for name := range s.grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, map[string]any{
		"grammars": names,
		"cached":   s.cache.len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON: "+err.Error()))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{Message: err.Error()}
	var ce *grammar.CompileError
	if errors.As(err, &ce) && ce.Pos.IsValid() {
		pos := ce.Pos
		detail.Message = ce.Message
		detail.Pos = &pos
	}
	writeJSON(w, status, ErrorResponse{Errors: []ErrorDetail{detail}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warningf("write response: %v", err)
	}
}
