package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/descriptor"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/logger"
	"github.com/dharsanguruparan/rreport/internal/queue"
	"github.com/dharsanguruparan/rreport/internal/report"
	"github.com/dharsanguruparan/rreport/internal/repository"
	"github.com/dharsanguruparan/rreport/internal/schema"
)

// JobStore is the part of the job repository the API needs.
type JobStore interface {
	Create(ctx context.Context, job *repository.ReportJob) error
	Get(ctx context.Context, id string) (*repository.ReportJob, error)
}

// URLSigner issues download links for rendered reports.
type URLSigner interface {
	PresignReportURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// Server exposes HTTP endpoints for rendering descriptors and tracking jobs.
type Server struct {
	cfg    *config.Config
	jobs   JobStore
	signer URLSigner
	queue  queue.Enqueuer
	loader *descriptor.Loader
	log    logger.Logger
	server *http.Server
	once   sync.Once
}

// New constructs a Server.
func New(cfg *config.Config, jobs JobStore, signer URLSigner, queueClient queue.Enqueuer, loader *descriptor.Loader, log logger.Logger) *Server {
	return &Server{
		cfg:    cfg,
		jobs:   jobs,
		signer: signer,
		queue:  queueClient,
		loader: loader,
		log:    logger.Component(log, "api"),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.HandleFunc("/render", s.handleRender)
	mux.HandleFunc("/payload", s.handlePayload)
	mux.HandleFunc("/reports", s.handleReports)
	mux.HandleFunc("/reports/", s.handleReportRoute)
	return corsMiddleware(s.loggingMiddleware(mux))
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:              s.cfg.Address,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	s.log.Infof("api listening on %s", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(schema.XSD())
}

// handleRender turns a descriptor into the validated XML document.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	rep, _, ok := s.readDescriptor(w, r)
	if !ok {
		return
	}
	out, err := rep.SerializeToString()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out)
}

// handlePayload turns a descriptor into the REST engine request.
func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	rep, _, ok := s.readDescriptor(w, r)
	if !ok {
		return
	}
	payload, err := rep.Request()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	rep, body, ok := s.readDescriptor(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	job := &repository.ReportJob{
		ID:         uuid.NewString(),
		Format:     rep.Format().String(),
		Descriptor: string(body),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.log.Errorf("create job: %v", err)
		http.Error(w, "failed to store job", http.StatusInternalServerError)
		return
	}
	payload := queue.RenderPayload{JobID: job.ID, Format: job.Format}
	if err := queue.EnqueueRender(ctx, s.queue, payload); err != nil {
		s.log.Errorf("enqueue job %s: %v", job.ID, err)
		http.Error(w, "failed to queue job", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"id":     job.ID,
		"status": string(repository.StatusQueued),
	})
}

func (s *Server) handleReportRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/reports/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	job, err := s.jobs.Get(r.Context(), parts[0])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "report job not found", http.StatusNotFound)
			return
		}
		s.log.Errorf("get job %s: %v", parts[0], err)
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if len(parts) == 1 {
		respondJSON(w, http.StatusOK, job)
		return
	}
	if parts[1] != "url" {
		http.NotFound(w, r)
		return
	}
	if job.Status != repository.StatusCompleted || job.OutputKey == nil {
		http.Error(w, "report not rendered yet", http.StatusConflict)
		return
	}
	url, err := s.signer.PresignReportURL(r.Context(), *job.OutputKey, s.cfg.PresignTTL)
	if err != nil {
		s.log.Errorf("presign %s: %v", *job.OutputKey, err)
		http.Error(w, "failed to generate url", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// readDescriptor reads a POSTed descriptor and builds the report. It writes
// the error response itself and reports false on failure.
func (s *Server) readDescriptor(w http.ResponseWriter, r *http.Request) (*report.Report, []byte, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, nil, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		http.Error(w, "descriptor too large or unreadable", http.StatusRequestEntityTooLarge)
		return nil, nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		http.Error(w, "empty descriptor", http.StatusBadRequest)
		return nil, nil, false
	}
	rep, err := s.loader.Parse(body, "")
	if err != nil {
		respondError(w, err)
		return nil, nil, false
	}
	return rep, body, true
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrEnum):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrSerialization):
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
