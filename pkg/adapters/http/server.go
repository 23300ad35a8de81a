// Package http exposes an organization over a REST surface: workflow
// listing, run submission, and run history backed by a RunStore.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avells/cadre/pkg/domain"
	"github.com/avells/cadre/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Orchestrator is the slice of the organization the HTTP surface needs.
type Orchestrator interface {
	Name() string
	Workflows() []string
	WorkflowSteps(name string) ([]domain.Step, error)
	Run(ctx context.Context, workflowName string, inputs, shared map[string]any) (domain.Results, error)
}

// Server routes HTTP requests to an orchestrator. If a RunStore is
// configured, every run is persisted and served back under /runs.
type Server struct {
	org    Orchestrator
	store  ports.RunStore
	logger *slog.Logger
}

type Option func(*Server)

// WithStore enables run persistence.
func WithStore(store ports.RunStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for an orchestrator.
func NewHandler(org Orchestrator, opts ...Option) http.Handler {
	s := &Server{
		org:    org,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/workflows", s.listWorkflows)
	r.Get("/workflows/{name}", s.getWorkflow)
	r.Post("/workflows/{name}/runs", s.startRun)
	r.Get("/runs", s.listRuns)
	r.Get("/runs/{id}", s.getRun)

	return r
}

type runRequest struct {
	Inputs  map[string]any `json:"inputs"`
	Context map[string]any `json:"context"`
}

type runResponse struct {
	ID       string         `json:"id,omitempty"`
	Workflow string         `json:"workflow"`
	Results  domain.Results `json:"results"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "organization": s.org.Name()})
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"workflows": s.org.Workflows()})
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	steps, err := s.org.WorkflowSteps(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "steps": steps})
}

// startRun executes a workflow synchronously and returns the full results
// mapping. Step failures are carried inside the mapping, not as HTTP errors;
// only an unknown workflow rejects the request.
func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body runRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	started := time.Now().UTC()
	results, err := s.org.Run(r.Context(), name, body.Inputs, body.Context)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownWorkflow) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := runResponse{Workflow: name, Results: results}
	if s.store != nil {
		resp.ID = newRunID()
		rec := domain.RunRecord{
			ID:         resp.ID,
			Owner:      s.org.Name(),
			Workflow:   name,
			Results:    results,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
		}
		if err := s.store.Save(r.Context(), rec); err != nil {
			s.logger.Error("failed to persist run", "id", resp.ID, "err", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("run persistence is not configured"))
		return
	}
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": ids})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("run persistence is not configured"))
		return
	}
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func newRunID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "run-" + hex.EncodeToString(b)
}
