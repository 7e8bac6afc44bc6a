package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/ricardonunez-io/logcopilot/internal/archive"
	"github.com/ricardonunez-io/logcopilot/internal/copilot"
	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/ricardonunez-io/logcopilot/internal/index"
	"github.com/ricardonunez-io/logcopilot/internal/query"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 64 << 20

type Server struct {
	svc     *copilot.Service
	archive *archive.Archive
	router  *mux.Router
}

// New wires the HTTP routes. archive may be nil to skip keeping raw uploads.
func New(svc *copilot.Service, a *archive.Archive) *Server {
	s := &Server{svc: svc, archive: a, router: mux.NewRouter()}
	s.router.Use(logRequests)
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/upload-log", s.handleUpload).Methods(http.MethodPost)
	s.router.HandleFunc("/analyze-log", s.handleAnalyze).Methods(http.MethodPost)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type uploadResponse struct {
	FileID      string `json:"file_id,omitempty"`
	Filename    string `json:"filename"`
	Index       string `json:"index"`
	IndexedDocs int    `json:"indexed_docs"`
	Message     string `json:"message"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Log Copilot API OK"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "field 'file' is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	resp := uploadResponse{Filename: header.Filename}
	if s.archive != nil {
		saved, err := s.archive.Save(header.Filename, content)
		if err != nil {
			log.Err(err).Str("filename", header.Filename).Msg("Failed to archive upload")
			writeDetail(w, http.StatusInternalServerError, "failed to store upload")
			return
		}
		resp.FileID = saved.FileID
	}

	result, err := s.svc.Ingest(r.Context(), copilot.IngestRequest{
		Content:     content,
		Category:    formValue(r, "log_type", copilot.DefaultCategory),
		Description: r.FormValue("description"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp.Index = result.Index
	resp.IndexedDocs = result.Indexed
	resp.Message = "Log saved and indexed successfully."
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	idx := r.FormValue("index")
	if idx == "" {
		writeDetail(w, http.StatusBadRequest, "field 'index' is required")
		return
	}

	size := query.DefaultLimit
	if v := r.FormValue("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeDetail(w, http.StatusBadRequest, "field 'size' must be a positive integer")
			return
		}
		size = n
	}

	result, err := s.svc.Analyze(r.Context(), copilot.AnalysisRequest{
		Index:       idx,
		Filter:      formValue(r, "query", query.MatchAll),
		Limit:       size,
		Category:    formValue(r, "log_type", copilot.DefaultCategory),
		Description: r.FormValue("description"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func formValue(r *http.Request, key, def string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return def
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNoMatch):
		writeDetail(w, http.StatusNotFound, "No logs found for this filter.")
	case errors.Is(err, index.ErrInvalidCategory), errors.Is(err, index.ErrInvalidName):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrReasoningEmpty):
		writeDetail(w, http.StatusBadGateway, "The reasoning service returned no answer.")
	case errors.Is(err, errs.ErrBackendUnavailable):
		log.Err(err).Msg("Backend unavailable")
		writeDetail(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Err(err).Msg("Request failed")
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write response")
	}
}
