// Package server exposes the verification pipeline over HTTP: submit a
// document's extracted pages, list past runs, and fetch stored results as
// JSON or a rendered HTML report.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/lulf87/pdf-report-checker-sub000/internal/report"
	"github.com/lulf87/pdf-report-checker-sub000/internal/store"
)

type Server struct {
	pipeline *report.Pipeline
	store    *store.Store
	markdown goldmark.Markdown
}

func New(pipeline *report.Pipeline, st *store.Store) http.Handler {
	s := &Server{
		pipeline: pipeline,
		store:    st,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRun)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmit(w, r)
	case http.MethodGet:
		s.handleList(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req report.RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		writeError(w, http.StatusBadRequest, "document_id is required")
		return
	}

	res, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, err := s.store.SaveRun(res)
	if err != nil {
		log.Printf("save run for %s: %v", req.DocumentID, err)
		writeError(w, http.StatusInternalServerError, "failed to persist run")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"run_id": runID, "result": res})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(50)
	if err != nil {
		log.Printf("list runs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleRun serves /api/runs/{id} and /api/runs/{id}/report.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	runID, sub, _ := strings.Cut(rest, "/")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run id is required")
		return
	}

	res, err := s.store.GetRun(runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		log.Printf("get run %s: %v", runID, err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	switch sub {
	case "":
		writeJSON(w, http.StatusOK, res)
	case "report":
		s.serveReportHTML(w, res)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) serveReportHTML(w http.ResponseWriter, res report.VerificationResult) {
	var body bytes.Buffer
	if err := s.markdown.Convert([]byte(res.ReportMarkdown), &body); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body>%s</body></html>",
		res.DocumentID, body.String())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
