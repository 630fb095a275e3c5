// Package http exposes the FSM checks and the security aggregator over a
// small JSON API.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/internal/presentation/graph"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/fsm"
	"github.com/aretw0/fsmgen/pkg/ports"
	"github.com/aretw0/fsmgen/pkg/security"
)

// maxBody bounds request bodies. Contracts and FSMs are small documents.
const maxBody = 4 << 20

// Server serves the API.
type Server struct {
	store   ports.OutcomeStore
	metrics http.Handler
	version string
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore exposes stored records under /records.
func WithStore(store ports.OutcomeStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics mounts a Prometheus handler under /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the router.
func NewHandler(opts ...Option) http.Handler {
	s := &Server{logger: logging.NewNop(), version: "dev"}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Route("/fsm", func(r chi.Router) {
		r.Post("/validate", s.ValidateFSM)
		r.Post("/graph", s.GraphFSM)
		r.Post("/repair", s.RepairFSM)
	})
	r.Route("/security", func(r chi.Router) {
		r.Post("/score", s.ScoreFindings)
		r.Post("/sarif", s.SARIF)
	})

	if s.store != nil {
		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.ListRecords)
			r.Get("/{id}", s.GetRecord)
			r.Delete("/{id}", s.DeleteRecord)
		})
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// AnalysisResponse is returned by POST /fsm/validate.
type AnalysisResponse struct {
	Valid       bool     `json:"valid"`
	Message     string   `json:"message"`
	Unreachable []string `json:"unreachable"`
	HasCycle    bool     `json:"has_cycle"`
	Accepted    bool     `json:"accepted"`
}

// ErrorResponse carries a failure and, for undecodable documents, each violation.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

// ValidateFSM runs the structural validator and, when it passes, the graph analyzer.
func (s *Server) ValidateFSM(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	valid, msg := fsm.Validate(doc)
	resp := AnalysisResponse{Valid: valid, Message: msg, Unreachable: []string{}}
	if valid {
		a := fsm.Analyze(doc)
		resp.Unreachable = append(resp.Unreachable, a.Unreachable...)
		resp.HasCycle = a.HasCycle
		resp.Accepted = len(a.Unreachable) == 0 && a.HasCycle
	}
	writeJSON(w, http.StatusOK, resp)
}

// GraphFSM renders the document as a Mermaid flowchart.
func (s *Server) GraphFSM(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	var overlay *graph.GraphOverlay
	if valid, _ := fsm.Validate(doc); valid {
		overlay = &graph.GraphOverlay{Unreachable: fsm.Analyze(doc).Unreachable}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(doc, overlay))
}

// RepairFSM reports the cardinalities recovered from a possibly malformed payload.
func (s *Server) RepairFSM(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fsm.RepairAndExtract(fsm.ExtractPayload(string(body))))
}

// ScoreResponse is returned by POST /security/score.
type ScoreResponse struct {
	Findings []domain.MergedFinding `json:"findings"`
	Report   domain.RiskReport      `json:"report"`
}

// ScoreFindings merges raw analyzer findings and scores them.
func (s *Server) ScoreFindings(w http.ResponseWriter, r *http.Request) {
	findings, ok := s.readFindings(w, r)
	if !ok {
		return
	}
	merged, report := security.Aggregate(findings)
	if merged == nil {
		merged = []domain.MergedFinding{}
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Findings: merged, Report: report})
}

// SARIF converts raw findings into a SARIF log. The artifact URI is taken from ?uri=.
func (s *Server) SARIF(w http.ResponseWriter, r *http.Request) {
	findings, ok := s.readFindings(w, r)
	if !ok {
		return
	}
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		uri = "contract.sol"
	}
	w.Header().Set("Content-Type", "application/sarif+json")
	if err := security.WriteSARIF(w, uri, security.Merge(security.Actionable(findings))); err != nil {
		s.logger.Error("SARIF export failed", "error", err)
	}
}

// ListRecords returns the IDs of stored records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetRecord returns one stored record.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		s.fail(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord removes one stored record.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles liveness probes.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo reports the running version.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": "fsmgen", "version": s.version})
}

func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	body, ok := readBody(w, r)
	if !ok {
		return nil, false
	}
	doc, err := fsm.Parse(string(body))
	if err != nil {
		resp := ErrorResponse{Error: err.Error()}
		var derr *fsm.DecodeError
		if errors.As(err, &derr) {
			resp.Violations = derr.Violations()
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return nil, false
	}
	return doc, true
}

func (s *Server) readFindings(w http.ResponseWriter, r *http.Request) ([]domain.Finding, bool) {
	var findings []domain.Finding
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&findings); err != nil {
		s.logger.Warn("invalid findings body", "error", err)
		s.fail(w, http.StatusBadRequest, err)
		return nil, false
	}
	return findings, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return body, true
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
