// Package server exposes the briefing pipeline over HTTP.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/intelfuse-ai/intelfuse/internal/auth"
	"github.com/intelfuse-ai/intelfuse/internal/config"
	"github.com/intelfuse-ai/intelfuse/internal/export"
	"github.com/intelfuse-ai/intelfuse/internal/extract"
	"github.com/intelfuse-ai/intelfuse/internal/ingest"
	"github.com/intelfuse-ai/intelfuse/internal/pipeline"
	"github.com/intelfuse-ai/intelfuse/internal/report"
	"github.com/intelfuse-ai/intelfuse/internal/telemetry"
)

// Server wraps the HTTP components for Intelfuse.
type Server struct {
	mux      *http.ServeMux
	cfg      *config.Config
	auth     *auth.Auth
	pipeline *pipeline.Pipeline
	exporter *export.Emitter
	tel      *telemetry.Provider
}

// New creates a server with all routes registered. The exporter may be
// nil when no export sinks are configured.
func New(cfg *config.Config, authz *auth.Auth, pl *pipeline.Pipeline, exporter *export.Emitter, tel *telemetry.Provider) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		cfg:      cfg,
		auth:     authz,
		pipeline: pl,
		exporter: exporter,
		tel:      tel,
	}

	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/v1/briefings", s.handleBriefings)

	return s
}

// Start runs the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout.Std(),
		ReadTimeout:       s.cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      s.cfg.Server.WriteTimeout.Std(),
		IdleTimeout:       s.cfg.Server.IdleTimeout.Std(),
	}
	log.Printf("Intelfuse running on %s", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

// briefingRequest is the wire shape of POST /v1/briefings. Reports is
// a JSON array passed through as text, URLs is newline-delimited, and
// each document carries base64-encoded bytes.
type briefingRequest struct {
	Reports   string             `json:"reports"`
	URLs      string             `json:"urls"`
	Documents []briefingDocument `json:"documents"`
}

type briefingDocument struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleBriefings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.auth.Enabled() {
		key, ok := parseBearerToken(r.Header.Get("Authorization"))
		if !ok || !s.auth.Allow(key) {
			writeError(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxRequestBodyBytes)

	var reqBody briefingRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	docs := make([]ingest.Document, 0, len(reqBody.Documents))
	for i, d := range reqBody.Documents {
		data, err := base64.StdEncoding.DecodeString(d.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("document %d is not valid base64", i+1))
			return
		}
		docs = append(docs, ingest.Document{Name: d.Name, Data: data})
	}

	start := time.Now()
	result, err := s.pipeline.Run(r.Context(), pipeline.Input{
		Reports:   reqBody.Reports,
		Documents: docs,
		URLs:      reqBody.URLs,
	})
	if err != nil {
		writeError(w, briefingStatus(err), err.Error())
		return
	}

	if s.exporter != nil {
		durMs := float64(time.Since(start).Microseconds()) / 1000.0
		s.exporter.Emit(export.NewEvent(result.Aggregate, result.Statements, result.Warnings, durMs))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("failed to write briefing response: %v", err)
	}
}

// briefingStatus maps pipeline failures to HTTP statuses. Input the
// caller could fix is 422; everything else is a 500.
func briefingStatus(err error) int {
	switch err.(type) {
	case *report.MalformedInputError,
		*report.MissingFieldError,
		*report.InvalidSeverityError,
		*report.InvalidConfidenceError,
		*report.EmptyCorpusError,
		*extract.ExtractionError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseBearerToken extracts the token from an Authorization: Bearer header.
func parseBearerToken(h string) (string, bool) {
	if h == "" {
		return "", false
	}
	parts := strings.Fields(h)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}
