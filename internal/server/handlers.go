package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/pipeline"
)

type errorResponse struct {
	Error string `json:"error"`
}

type regenerateResponse struct {
	Chart    any    `json:"chart,omitempty"`
	Attempts int    `json:"attempts"`
	Message  string `json:"message,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze accepts a multipart spreadsheet upload under the "file"
// field, parses it and runs a full analysis pass. The upload is staged
// in a temp file so the XLSX reader can seek.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"file\" field")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stage upload: "+err.Error())
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "stage upload: "+err.Error())
		return
	}
	tmp.Close()

	ds, err := dataset.ParseFile(tmp.Name())
	if err != nil {
		var perr *dataset.ParseError
		if errors.As(err, &perr) {
			writeError(w, http.StatusUnprocessableEntity, perr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ds.Name = header.Filename

	analysis, err := s.controller.Analyze(r.Context(), ds)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleCurrentAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis := s.controller.Current()
	if analysis == nil {
		writeError(w, http.StatusNotFound, "no analysis loaded")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// handleRegenerate swaps one chart slot for an unseen alternative.
// Limit and no-alternative outcomes are reported with distinct statuses
// so the frontend can message them without string matching.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	chartID := chi.URLParam(r, "chartID")
	chart, err := s.controller.Regenerate(r.Context(), chartID)
	attempts := s.controller.Attempts(chartID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, regenerateResponse{Chart: chart, Attempts: attempts})
	case errors.Is(err, pipeline.ErrRegenerationLimit):
		writeJSON(w, http.StatusTooManyRequests, regenerateResponse{Attempts: attempts, Message: err.Error()})
	case errors.Is(err, pipeline.ErrRegenerationInFlight):
		writeJSON(w, http.StatusConflict, regenerateResponse{Attempts: attempts, Message: err.Error()})
	case errors.Is(err, pipeline.ErrNoAlternative):
		writeJSON(w, http.StatusOK, regenerateResponse{Attempts: attempts, Message: err.Error()})
	case errors.Is(err, pipeline.ErrUnknownChart), errors.Is(err, pipeline.ErrNoAnalysis):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
