// cmd/pipeline-manager/server.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"site-pipeline/internal/artifacts"
	"site-pipeline/internal/common/aws"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/models"
	"site-pipeline/internal/orchestrator"
	gs "site-pipeline/internal/workers/site-generation/generate-site"
)

type generateRequest struct {
	Intake          models.ProjectIntake `json:"intake"`
	ExistingPack    *models.ContentPack  `json:"existingPack,omitempty"`
	ForceRegenerate bool                 `json:"forceRegenerate,omitempty"`
}

type generateResponse struct {
	*models.PipelineResult
	OutputDir string `json:"outputDir,omitempty"`
}

type server struct {
	generator gs.Generator
	notifier  gs.Notifier
	ready     func(context.Context) map[string]string
	outputDir string
	timeout   time.Duration
	logger    logger.Logger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := artifacts.ValidateID(req.Intake.ProjectID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid intake.projectId: " + err.Error()})
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := s.generator.Generate(ctx, &orchestrator.GenerateRequest{
		Intake:          req.Intake,
		ExistingPack:    req.ExistingPack,
		ForceRegenerate: req.ForceRegenerate,
	})

	resp := generateResponse{PipelineResult: res}
	if res.Success && s.outputDir != "" {
		dir, err := artifacts.Write(s.outputDir, res)
		if err != nil {
			s.logger.Error("writing generated files failed", map[string]interface{}{
				"runId": res.RunID,
				"error": err.Error(),
			})
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error(), "runId": res.RunID})
			return
		}
		resp.OutputDir = dir
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyRunCompleted(context.WithoutCancel(ctx), aws.NewRunNotification(req.Intake, res, resp.OutputDir)); err != nil {
			s.logger.Warn("run notification failed", map[string]interface{}{"runId": res.RunID, "error": err.Error()})
		}
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	if s.ready != nil {
		checks = s.ready(r.Context())
	}

	status, code := "ready", http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status, code = "not_ready", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
