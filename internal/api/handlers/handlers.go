package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/tr-activity/internal/api/middleware"
	"github.com/dvloznov/tr-activity/internal/events"
	"github.com/dvloznov/tr-activity/internal/export"
	"github.com/dvloznov/tr-activity/internal/gcsstore"
	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
	"github.com/dvloznov/tr-activity/internal/jobs"
	"github.com/dvloznov/tr-activity/internal/pipeline"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NormalizeHandler handles synchronous normalization of raw event payloads.
type NormalizeHandler struct {
	log zerolog.Logger
}

// NewNormalizeHandler creates a new normalize handler.
func NewNormalizeHandler(log zerolog.Logger) *NormalizeHandler {
	return &NormalizeHandler{log: log}
}

// Normalize handles POST /api/normalize
//
// The body is a raw event document (array or items wrapper). The response is
// the normalized events as JSON, or as bookkeeping CSV when ?format=csv.
func (h *NormalizeHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	raws, err := pipeline.DecodeRawEvents(body)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid event document")
		return
	}

	evs, err := events.NormalizeAll(ctx, raws, pipeline.DefaultNormalizeWorkers)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to normalize events")
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		lang := r.URL.Query().Get("lang")
		if lang == "" {
			lang = "en"
		}
		formatter := export.NewFormatter(lang)
		if r.URL.Query().Get("date_format") == "iso" {
			formatter = formatter.WithDateLayout(export.ISO8601)
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, formatter.Header())
		for _, ev := range evs {
			io.WriteString(w, formatter.Format(ev))
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": evs,
		"count":  len(evs),
	})
}

// DocumentsHandler handles document-related endpoints.
type DocumentsHandler struct {
	repo      infra.DocumentRepository
	publisher jobs.Publisher
	storage   gcsstore.StorageService
	bucket    string
	log       zerolog.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(repo infra.DocumentRepository, publisher jobs.Publisher, storage gcsstore.StorageService, bucket string, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		repo:      repo,
		publisher: publisher,
		storage:   storage,
		bucket:    bucket,
		log:       log,
	}
}

// ListDocuments handles GET /api/documents
func (h *DocumentsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documents, err := h.repo.ListAllDocuments(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list documents")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": documents,
		"count":     len(documents),
	})
}

// UploadDocument handles POST /api/documents/upload
//
// The body is the raw event document; it is stored on GCS and a normalization
// job is enqueued for it.
func (h *DocumentsHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	// Reject documents that would fail downstream before paying for storage.
	if _, err := pipeline.DecodeRawEvents(body); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid event document")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "events.json"
	}
	if idx := strings.Index(filename, "?"); idx > 0 {
		filename = filename[:idx]
	}
	filename = filepath.Base(filename)

	objectName := fmt.Sprintf("uploads/%s/%s", time.Now().Format("2006/01/02"), uuid.NewString()+"-"+filename)

	gcsURI, err := h.storage.UploadDocument(ctx, h.bucket, objectName, body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to upload document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	h.log.Info().
		Str("gcs_uri", gcsURI).
		Int("bytes", len(body)).
		Msg("Document uploaded")

	job := &jobs.NormalizeDocumentJob{
		GCSURI: gcsURI,
	}
	if err := h.publisher.PublishNormalizeDocument(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue normalization job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue normalization job")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": gcsURI,
		"status":  string(job.Status),
	})
}

// EnqueueNormalization handles POST /api/documents/normalize
func (h *DocumentsHandler) EnqueueNormalization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GCSURI string `json:"gcs_uri"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri is required")
		return
	}

	ctx := r.Context()

	job := &jobs.NormalizeDocumentJob{
		GCSURI: req.GCSURI,
	}

	if err := h.publisher.PublishNormalizeDocument(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue normalization job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue normalization job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", req.GCSURI).Msg("Normalization job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": req.GCSURI,
		"status":  string(job.Status),
	})
}

// EventsHandler handles normalized event endpoints.
type EventsHandler struct {
	repo infra.DocumentRepository
	log  zerolog.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(repo infra.DocumentRepository, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		repo: repo,
		log:  log,
	}
}

// ListEvents handles GET /api/events
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	startDateStr := query.Get("start_date")
	endDateStr := query.Get("end_date")

	var startDate, endDate time.Time
	var err error

	if startDateStr != "" {
		startDate, err = time.Parse("2006-01-02", startDateStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
	} else {
		startDate = time.Now().AddDate(-1, 0, 0) // 1 year ago
	}

	if endDateStr != "" {
		endDate, err = time.Parse("2006-01-02", endDateStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
	} else {
		endDate = time.Now()
	}

	rows, err := h.repo.QueryEventsByDateRange(ctx, startDate, endDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query events")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query events")
		return
	}

	// Return array directly for frontend compatibility
	if rows == nil {
		rows = []*infra.EventRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, rows)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		DocumentID: query.Get("document_id"),
		Status:     jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
