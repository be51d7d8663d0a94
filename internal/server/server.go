// Package server exposes the review pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/agrireview/agrireview/internal/app"
	"github.com/agrireview/agrireview/internal/config"
	"github.com/agrireview/agrireview/internal/domain"
	"github.com/agrireview/agrireview/internal/report"
)

// Server handles document uploads and returns structured reviews.
type Server struct {
	config config.ServerConfig
	runner *app.Runner
	logger *log.Logger
}

// New creates a new Server around an existing runner.
func New(cfg config.ServerConfig, runner *app.Runner, logger *log.Logger) *Server {
	return &Server{
		config: cfg,
		runner: runner,
		logger: logger,
	}
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler returns the HTTP handler for the review API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/review", s.handleReview)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// ListenAndServe runs the server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Printf("Listening on %s", s.config.ListenAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleReview handles POST /review - upload a document and review it.
// With ?format=report the response is the downloadable text artifact
// instead of JSON.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST")
		return
	}

	maxBytes := s.config.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "parse_error",
			"Failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file_required", "Document field is required")
		return
	}
	defer file.Close()

	// Validate file extension before reading the body
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".docx" {
		writeJSONError(w, http.StatusBadRequest, "invalid_type",
			"Unsupported file type. Supported: .docx")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "read_error", "Failed to read upload")
		return
	}

	resp, err := s.runner.ReviewDocument(r.Context(), header.Filename, data)
	if err != nil {
		status, code := statusForError(err)
		writeJSONError(w, status, code, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "report" {
		body := s.runner.Exporter().Format(resp, header.Filename, time.Now())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", report.ReportFileName(header.Filename)))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForError maps pipeline error kinds to HTTP status codes.
func statusForError(err error) (int, string) {
	switch domain.KindOf(err) {
	case domain.KindExtraction:
		return http.StatusBadRequest, "extraction_failed"
	case domain.KindEmptyDocument:
		return http.StatusUnprocessableEntity, "empty_document"
	case domain.KindAuthentication:
		return http.StatusUnauthorized, "not_authenticated"
	case domain.KindGeneration:
		return http.StatusBadGateway, "generation_failed"
	case domain.KindValidation:
		return http.StatusBadGateway, "invalid_review"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
