// Package server exposes the decomposition service over HTTP: job
// submission, progress, manifests, and cancellation.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/config"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/decomposer"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/dispatcher"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/filetype"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/metrics"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/storage"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/store"
)

type Queue interface {
	Enqueue(ctx context.Context, payload []byte) error
	CancelJob(ctx context.Context, jobID string) error
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Config    config.Config
	Queue     Queue
	Status    *store.RedisStatus
	Manifests *store.RedisManifest
	Local     *storage.Local
}

type Server struct {
	deps Dependencies
}

func New(deps Dependencies) *Server {
	return &Server{deps: deps}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/decompose", s.handleDecompose)
	mux.HandleFunc("/decompose_upload", s.handleDecomposeUpload)
	mux.HandleFunc("/progress/", s.handleProgress)
	mux.HandleFunc("/manifest/", s.handleManifest)
	mux.HandleFunc("/webhook/cancel_job", s.handleCancelJob)
}

type decomposeReq struct {
	SourceKey   string `json:"source_key"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode,omitempty"`
	ForceSplit  bool   `json:"force_split,omitempty"`
	Engine      string `json:"engine,omitempty"`
}

type decomposeResp struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Queue.Ping(r.Context()); err != nil {
		http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()
	var req decomposeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.SourceKey == "" {
		http.Error(w, "missing source_key", http.StatusBadRequest)
		return
	}
	mode, ok := normalizeMode(req.Mode)
	if !ok {
		http.Error(w, "mode must be detect or split", http.StatusBadRequest)
		return
	}

	jobID := uuid.NewString()
	job := dispatcher.Job{
		JobID:             jobID,
		SourceKey:         req.SourceKey,
		SourceDescription: req.Description,
		Mode:              mode,
		SplitInvalid:      req.ForceSplit,
		Engine:            strings.ToLower(req.Engine),
	}
	if err := s.createJob(r.Context(), job, map[string]string{"source_key": req.SourceKey}); err != nil {
		http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
		return
	}

	log.Info().Str("job_id", jobID).Str("source_key", req.SourceKey).Str("mode", mode).Msg("decompose job created")
	writeJSON(w, http.StatusCreated, decomposeResp{Status: "ok", JobID: jobID, Message: "decomposition job created"})
}

// handleDecomposeUpload accepts a multipart bundle, stages it locally,
// and enqueues a job referencing the staged file.
func (s *Server) handleDecomposeUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	maxBytes := s.deps.Config.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	if !filetype.IsPDF(data) {
		http.Error(w, "file is not a PDF", http.StatusUnsupportedMediaType)
		return
	}

	jobID := uuid.NewString()
	path, err := s.deps.Local.SaveUpload(jobID, data)
	if err != nil {
		http.Error(w, "cannot save upload", http.StatusInternalServerError)
		return
	}

	mode, ok := normalizeMode(r.FormValue("mode"))
	if !ok {
		http.Error(w, "mode must be detect or split", http.StatusBadRequest)
		return
	}
	job := dispatcher.Job{
		JobID:             jobID,
		SourcePath:        path,
		SourceDescription: r.FormValue("description"),
		Mode:              mode,
		SplitInvalid:      r.FormValue("force_split") == "true" || r.FormValue("force_split") == "on",
		Engine:            strings.ToLower(r.FormValue("engine")),
	}
	if err := s.createJob(r.Context(), job, map[string]string{"source": "upload"}); err != nil {
		http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
		return
	}

	log.Info().Str("job_id", jobID).Int("size", len(data)).Str("mode", mode).Msg("upload job created")
	writeJSON(w, http.StatusCreated, decomposeResp{Status: "ok", JobID: jobID, Message: "upload job created"})
}

func (s *Server) createJob(ctx context.Context, job dispatcher.Job, meta map[string]string) error {
	start := time.Now()
	_ = s.deps.Status.Set(ctx, job.JobID, store.Status{
		Status: store.StateQueued, Progress: 0, Message: "queued", Start: &start, Metadata: meta,
	})
	return s.deps.Queue.Enqueue(ctx, job.Marshal())
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/progress/")
	if id == "" {
		http.Error(w, "missing job id", http.StatusBadRequest)
		return
	}
	st, ok, err := s.deps.Status.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":     id,
		"success":    st.Status == store.StateDone,
		"status":     st.Status,
		"progress":   st.Progress,
		"message":    st.Message,
		"start_time": st.Start,
		"end_time":   st.End,
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/manifest/")
	if id == "" {
		http.Error(w, "missing job id", http.StatusBadRequest)
		return
	}
	b, ok, err := s.deps.Manifests.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if !ok {
		// Distinguish "still running" from "unknown job"
		if st, found, _ := s.deps.Status.Get(r.Context(), id); found && st.Status != store.StateDone {
			http.Error(w, "not ready", http.StatusAccepted)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

type cancelReq struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req cancelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.JobID == "" {
		http.Error(w, "missing job_id", http.StatusBadRequest)
		return
	}
	if err := s.deps.Queue.CancelJob(r.Context(), req.JobID); err != nil {
		http.Error(w, "cancel failed", http.StatusInternalServerError)
		return
	}
	st, ok, _ := s.deps.Status.Get(r.Context(), req.JobID)
	if !ok {
		st = store.Status{}
	}
	st.Status = store.StateCancelled
	if req.Reason != "" {
		st.Message = fmt.Sprintf("cancelled: %s", req.Reason)
	} else {
		st.Message = "cancelled"
	}
	now := time.Now()
	st.End = &now
	_ = s.deps.Status.Set(r.Context(), req.JobID, st)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "job_id": req.JobID, "status": store.StateCancelled})
}

func normalizeMode(m string) (string, bool) {
	switch strings.ToLower(m) {
	case "", string(decomposer.ModeSplit):
		return string(decomposer.ModeSplit), true
	case string(decomposer.ModeDetectOnly):
		return string(decomposer.ModeDetectOnly), true
	default:
		return "", false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
