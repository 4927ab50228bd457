package server

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/blctm/gigagreen/pkg/cellkpi"
	"github.com/blctm/gigagreen/pkg/cellkpi/export"
	"github.com/blctm/gigagreen/pkg/cellkpi/models"
	"github.com/blctm/gigagreen/pkg/cellkpi/summary"
)

// CombinedCSVName is the download name of a session's combined summary.
const CombinedCSVName = "combined_kpi_summary.csv"

// FileResult is the per-file entry of an upload response.
type FileResult struct {
	File    string          `json:"file"`
	Status  string          `json:"status"`
	Stage   string          `json:"stage,omitempty"`
	Error   string          `json:"error,omitempty"`
	Summary *models.Summary `json:"summary,omitempty"`
}

// Upload statuses.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// UploadResponse reports every file of an upload in request order.
type UploadResponse struct {
	SessionID string       `json:"session_id"`
	Results   []FileResult `json:"results"`
	Records   int          `json:"records"`
	Aborted   bool         `json:"aborted"`
}

// SessionResponse describes a session.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	Records   int       `json:"records"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.logger.InfoContext(r.Context(), "session created", slog.String("session_id", sess.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, SessionResponse{SessionID: sess.ID, CreatedAt: sess.CreatedAt, Records: 0})
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.sessions.End(sess.ID); err != nil {
		renderError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "session ended", slog.Int("records", sess.Len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) uploadFiles(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		renderError(w, r, invalidUpload(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["file"]
	if len(parts) == 0 {
		renderError(w, r, errNoFiles)
		return
	}
	sources := make([]cellkpi.Source, len(parts))
	for i, fh := range parts {
		sources[i] = multipartSource(fh)
	}

	start := time.Now()
	s.processMu.Lock()
	var report *cellkpi.BatchReport
	var batchErr error
	err := sess.Update(func(store *summary.Store) error {
		report, batchErr = s.pipeline.RunBatch(sources, store)
		return nil
	})
	s.processMu.Unlock()
	s.metrics.batchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := UploadResponse{
		SessionID: sess.ID,
		Results:   make([]FileResult, 0, len(parts)),
		Aborted:   batchErr != nil,
	}
	for _, o := range report.Outcomes {
		if o.Err != nil {
			outcome := outcomeFatal
			if cellkpi.IsDataError(o.Err) {
				outcome = outcomeDataError
			}
			s.metrics.files.WithLabelValues(outcome).Inc()
			resp.Results = append(resp.Results, FileResult{
				File:   o.File,
				Status: StatusError,
				Stage:  string(o.Err.Stage),
				Error:  o.Err.Err.Error(),
			})
			continue
		}
		s.metrics.files.WithLabelValues(outcomeOK).Inc()
		s.metrics.records.Inc()
		resp.Results = append(resp.Results, FileResult{File: o.File, Status: StatusOK, Summary: o.Summary})
	}
	for _, fh := range parts[len(report.Outcomes):] {
		s.metrics.files.WithLabelValues(outcomeSkipped).Inc()
		resp.Results = append(resp.Results, FileResult{File: fh.Filename, Status: StatusSkipped})
	}
	resp.Records = sess.Len()

	s.logger.InfoContext(r.Context(), "upload processed",
		slog.Int("files", len(parts)),
		slog.Int("records", resp.Records),
		slog.Bool("aborted", resp.Aborted))
	render.JSON(w, r, resp)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	data, err := export.ToJSON(sessionFrom(r).Combined(), false)
	if err != nil {
		renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) downloadCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sessionFrom(r).Combined(), export.CSVOptions{}); err != nil {
		renderError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", CombinedCSVName, buf.Bytes())
}

func (s *Server) downloadXLSX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, sessionFrom(r).Combined()); err != nil {
		renderError(w, r, err)
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "combined_kpi_summary.xlsx", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func multipartSource(fh *multipart.FileHeader) cellkpi.Source {
	return cellkpi.Source{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}
