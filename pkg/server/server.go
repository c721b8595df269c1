package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	"github.com/yurifrl/xtbpp/pkg/config"
	"github.com/yurifrl/xtbpp/pkg/converter"
	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/normalize"
	"github.com/yurifrl/xtbpp/pkg/service"
)

// MaxUploadSize bounds the multipart body of a conversion request.
const MaxUploadSize = 32 << 20

// MaxCachedFiles bounds the converted files kept for download.
const MaxCachedFiles = 256

// DefaultFileTTL applies when the configuration sets no download lifetime.
const DefaultFileTTL = 15 * time.Minute

// download is a converted CSV waiting to be fetched.
type download struct {
	name string
	data []byte
}

// Server handles HTTP requests for workbook conversion
type Server struct {
	config    *config.Config
	logger    *log.Logger
	mux       *http.ServeMux
	processor *service.Processor
	files     *cache.Cache
}

// New creates a new HTTP server
func New(cfg *config.Config, logger *log.Logger) (*Server, error) {
	processor, err := service.NewProcessor(cfg, logger)
	if err != nil {
		return nil, err
	}
	ttl := cfg.Server.FileTTL
	if ttl <= 0 {
		ttl = DefaultFileTTL
	}
	s := &Server{
		config:    cfg,
		logger:    logger,
		mux:       http.NewServeMux(),
		processor: processor,
		files:     cache.New(ttl, 2*ttl),
	}
	s.setupRoutes()
	return s, nil
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/healthz", s.withLogging(s.handleHealth))
	s.mux.HandleFunc("/api/convert", s.withLogging(s.handleConvert))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// Row represents a simplified record for JSON responses.
type Row struct {
	Ticker  string `json:"ticker"`
	Type    string `json:"type"`
	Shares  string `json:"shares"`
	Date    string `json:"date"`
	Value   string `json:"value"`
	Account string `json:"account"`
	Note    string `json:"note"`
}

func toRow(r models.Record) Row {
	return Row{
		Ticker:  r.TickerSymbol,
		Type:    string(r.OperationType),
		Shares:  r.Shares,
		Date:    normalize.FormatDate(r.Date),
		Value:   normalize.FormatDecimal(r.Value),
		Account: r.SecuritiesAccount,
		Note:    r.Note,
	}
}

// ---------------- convert handler ----------------
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, header, err := r.FormFile("workbook")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "workbook file required", err)
		return
	}
	defer file.Close()

	var modes []converter.Mode
	if raw := r.MultipartForm.Value["mode"]; len(raw) > 0 {
		if modes, err = converter.ParseModes(raw); err != nil {
			s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	// The workbook readers work on paths; the upload keeps its base name so
	// the output name follows it.
	dir, err := os.MkdirTemp("", "xtbpp-upload-")
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to create temp dir", err)
		return
	}
	defer os.RemoveAll(dir)

	name := filepath.Base(header.Filename)
	if !service.IsWorkbook(name) {
		s.respondError(w, r, http.StatusBadRequest, "unsupported file type", nil)
		return
	}
	tmp := filepath.Join(dir, name)
	if err := saveUpload(tmp, file); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to write temp file", err)
		return
	}

	out, err := s.processor.Preview(service.Job{Input: tmp, Modes: modes})
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to convert workbook", err)
		return
	}

	if s.files.ItemCount() >= MaxCachedFiles {
		s.files.DeleteExpired()
		if s.files.ItemCount() >= MaxCachedFiles {
			s.respondError(w, r, http.StatusServiceUnavailable, "too many pending downloads", nil)
			return
		}
	}
	filename := filepath.Base(out.Path)
	id := uuid.NewString()
	s.files.Set(id, download{name: filename, data: s.processor.Render(out.Records)}, cache.DefaultExpiration)

	var unpaired []string
	if out.Pairing != nil {
		for _, e := range out.Pairing.Unpaired() {
			unpaired = append(unpaired, fmt.Sprintf("%s: %s", e.Position, e.Status))
		}
	}

	s.logger.Info("conversion complete", "file", header.Filename, "records", len(out.Records))
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"id":       id,
		"file":     filename,
		"download": "/api/files/" + id,
		"currency": out.Currency,
		"data":     lo.Map(out.Records, func(r models.Record, _ int) Row { return toRow(r) }),
		"unpaired": unpaired,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// ---------------- file download handler ----------------

// handleFiles serves the CSV of a previously converted workbook.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if id == "" {
		s.respondError(w, r, http.StatusBadRequest, "file id required", nil)
		return
	}

	value, ok := s.files.Get(id)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "file not found", nil)
		return
	}
	file, ok := value.(download)
	if !ok {
		s.respondError(w, r, http.StatusInternalServerError, "internal type assertion error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.name))
	if _, err := w.Write(file.data); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status, message = http.StatusRequestEntityTooLarge, "upload too large"
		}
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
