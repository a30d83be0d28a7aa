package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/codec"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBody bounds uploaded documents.
const maxBody = 8 << 20

// Server exposes stored snapshots over HTTP.
type Server struct {
	Manager *snapshot.Manager
	Kinds   *registry.Registry

	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics records routes on m and serves gatherer at /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *snapshot.Manager, kinds *registry.Registry, opts ...Option) http.Handler {
	s := &Server{
		Manager: mgr,
		Kinds:   kinds,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.ListSnapshots)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSnapshot)
			r.Put("/", s.PutSnapshot)
			r.Delete("/", s.DeleteSnapshot)
			r.Get("/graph", s.GetGraph)
			r.Get("/validate", s.Validate)
			r.Post("/route", s.Route)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "lattice-http",
		"version": strings.TrimSpace(lattice.Version),
		"kinds":   s.Kinds.Kinds(),
	})
}

// ListSnapshots handles GET /snapshots.
func (s *Server) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Manager.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetSnapshot handles GET /snapshots/{id}. The ?format query selects the
// response encoding; JSON is the default.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	c, err := requestCodec(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	doc, err := s.Manager.Document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	data, err := codec.Marshal(c, doc)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(c.Format()))
	w.Write(data)
}

// PutSnapshot handles PUT /snapshots/{id}. The document is materialized
// before it is stored, so corrupt documents are rejected.
func (s *Server) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	c, err := requestCodec(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	doc, err := c.Decode(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.fail(w, badRequest(err))
		return
	}
	d, err := network.Unmarshal(doc, s.Kinds)
	if err != nil {
		s.fail(w, badRequest(err))
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.Manager.Save(r.Context(), id, d); err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("snapshot stored", "snapshot_id", id, "components", len(d.Components()))
	s.writeJSON(w, http.StatusCreated, map[string]any{"id": id, "components": len(d.Components())})
}

// DeleteSnapshot handles DELETE /snapshots/{id}.
func (s *Server) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /snapshots/{id}/graph with a Mermaid diagram.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	d, err := s.Manager.LoadNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(d, nil))
}

// ValidateResponse is the body of GET /snapshots/{id}/validate.
type ValidateResponse struct {
	Valid       bool           `json:"valid"`
	Definitions int            `json:"definitions"`
	BackRefs    int            `json:"back_refs"`
	Couplings   int            `json:"couplings"`
	Deliveries  int            `json:"deliveries"`
	Kinds       map[string]int `json:"kinds"`
	Issues      []string       `json:"issues,omitempty"`
}

// Validate handles GET /snapshots/{id}/validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Manager.Document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	report := validator.ValidateDocument(doc, s.Kinds)
	resp := ValidateResponse{
		Valid:       report.Err() == nil,
		Definitions: report.Definitions,
		BackRefs:    report.BackRefs,
		Couplings:   report.Couplings,
		Deliveries:  report.Deliveries,
		Kinds:       report.Kinds,
	}
	for _, issue := range report.Issues {
		resp.Issues = append(resp.Issues, issue.Error())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// RouteRequest is the body of POST /snapshots/{id}/route. Source is a
// component label or "self" for the network boundary.
type RouteRequest struct {
	Source string      `json:"source"`
	Port   domain.Port `json:"port"`
	Value  any         `json:"value"`
}

// Delivery is one routed event.
type Delivery struct {
	Target string      `json:"target"`
	Port   domain.Port `json:"port"`
	Value  any         `json:"value"`
}

// Route handles POST /snapshots/{id}/route: a one-hop lookup of where a
// value leaving (source, port) is delivered.
func (s *Server) Route(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		s.fail(w, badRequest(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	d, err := s.Manager.LoadNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if s.metrics != nil {
		d.Configure(network.WithHooks(s.metrics.Hooks()))
	}

	src, err := Find(d, req.Source)
	if err != nil {
		s.fail(w, err)
		return
	}

	deliveries := []Delivery{}
	for _, ev := range d.Route(domain.NewPortValue(req.Port, req.Value), src) {
		deliveries = append(deliveries, Delivery{
			Target: Name(d, ev.Target),
			Port:   ev.Value.Port,
			Value:  ev.Value.Value,
		})
	}
	s.writeJSON(w, http.StatusOK, deliveries)
}

// Find returns the component of d labeled name, or d itself for "self".
func Find(d *network.Digraph, name string) (domain.Component, error) {
	if name == "self" {
		return d, nil
	}
	for _, c := range d.Components() {
		if l, ok := c.(domain.Labeled); ok && l.Label() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrComponentNotFound, name)
}

// Name renders c by label, falling back to kind and handle.
func Name(d *network.Digraph, c domain.Component) string {
	if c == domain.Component(d) {
		return "self"
	}
	if l, ok := c.(domain.Labeled); ok && l.Label() != "" {
		return l.Label()
	}
	if h, ok := d.Lookup(c); ok {
		return fmt.Sprintf("%s#%d", c.Kind(), h)
	}
	return c.Kind()
}

type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return requestError{err: err}
}

func requestCodec(r *http.Request) (codec.Codec, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = codec.FormatJSON
	}
	c, err := codec.ByFormat(format)
	if err != nil {
		return nil, badRequest(err)
	}
	return c, nil
}

func contentType(format string) string {
	if format == codec.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr), domain.IsCorruptGraph(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSnapshotNotFound), errors.Is(err, domain.ErrComponentNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
