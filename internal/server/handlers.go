package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joseph-ayodele/invoice-sentinel/internal/pipeline"
	"github.com/joseph-ayodele/invoice-sentinel/internal/telemetry"
)

// parseRequest is the inbound body. pdf_url is accepted as a legacy alias
// for document_url.
type parseRequest struct {
	DocumentURL string `json:"document_url"`
	PDFURL      string `json:"pdf_url"`
	Instruction string `json:"instruction"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_INPUT", "request body must be valid JSON")
		return
	}
	docURL := strings.TrimSpace(req.DocumentURL)
	if docURL == "" {
		docURL = strings.TrimSpace(req.PDFURL)
	}
	if docURL == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_INPUT", "document_url is required")
		return
	}

	result := s.processor.Process(r.Context(), pipeline.AnalysisRequest{
		DocumentURL: docURL,
		Instruction: req.Instruction,
		Headers:     r.Header,
	})

	w.Header().Set(telemetry.HeaderRequestID, result.RequestID)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   s.processor.ConfiguredMode(),
	})
}

// requireAPIKey checks the shared secret when one is configured. An empty
// configured key disables the check.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey != "" {
			got := r.Header.Get(telemetry.HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.APIKey)) != 1 {
				s.logger.Warn("server.auth.rejected", "path", r.URL.Path)
				s.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing API key")
				return
			}
		}
		next(w, r)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("server.write_response", "error", err)
	}
}
