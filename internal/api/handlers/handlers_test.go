package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvloznov/tr-activity/internal/jobs"
	"github.com/dvloznov/tr-activity/internal/jobs/inmemory"
	"github.com/rs/zerolog"
)

const normalizeBody = `[
	{
		"timestamp": "2023-11-23T09:31:00.452+0000",
		"eventType": "ORDER_EXECUTED",
		"title": "Siemens",
		"subtitle": "Kauforder",
		"amount": {"value": -511.0},
		"details": {"sections": [
			{"action": {"type": "instrumentDetail", "payload": "DE0007236101"}},
			{
				"title": "Transaktion",
				"data": [{"title": "Aktien", "detail": {"text": "3,63"}}]
			}
		]}
	}
]`

func TestNormalizeHandlerJSON(t *testing.T) {
	h := NewNormalizeHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/normalize", strings.NewReader(normalizeBody))
	rec := httptest.NewRecorder()

	h.Normalize(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Count  int `json:"count"`
		Events []struct {
			Title string `json:"title"`
			Type  string `json:"type"`
			ISIN  string `json:"isin"`
		} `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Events) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	ev := resp.Events[0]
	if ev.Title != "Siemens" || ev.Type != "TRADE_INVOICE" || ev.ISIN != "DE0007236101" {
		t.Errorf("event = %+v", ev)
	}
}

func TestNormalizeHandlerCSV(t *testing.T) {
	h := NewNormalizeHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/normalize?format=csv&lang=de", strings.NewReader(normalizeBody))
	rec := httptest.NewRecorder()

	h.Normalize(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), rec.Body.String())
	}
	if !strings.HasPrefix(lines[0], "Datum;") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Kauf") || !strings.Contains(lines[1], "DE0007236101") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestNormalizeHandlerRejectsBadBody(t *testing.T) {
	h := NewNormalizeHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/normalize", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()

	h.Normalize(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestNormalizeHandlerBadTimestamp(t *testing.T) {
	h := NewNormalizeHandler(zerolog.Nop())

	body := `[{"eventType":"CREDIT","title":"x"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/normalize", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Normalize(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

// mockPublisher records published jobs.
type mockPublisher struct {
	published []*jobs.NormalizeDocumentJob
	err       error
}

func (m *mockPublisher) PublishNormalizeDocument(ctx context.Context, job *jobs.NormalizeDocumentJob) error {
	if m.err != nil {
		return m.err
	}
	if job.JobID == "" {
		job.JobID = "job-test"
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	m.published = append(m.published, job)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func TestEnqueueNormalization(t *testing.T) {
	pub := &mockPublisher{}
	h := NewDocumentsHandler(nil, pub, nil, "bucket", zerolog.Nop())

	body := `{"gcs_uri":"gs://bucket/events.json"}`
	req := httptest.NewRequest(http.MethodPost, "/api/documents/normalize", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.EnqueueNormalization(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(pub.published) != 1 || pub.published[0].GCSURI != "gs://bucket/events.json" {
		t.Errorf("published = %+v", pub.published)
	}
}

func TestEnqueueNormalizationRequiresURI(t *testing.T) {
	h := NewDocumentsHandler(nil, &mockPublisher{}, nil, "bucket", zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/normalize", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.EnqueueNormalization(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestJobsHandlerGetAndList(t *testing.T) {
	store := inmemory.NewStore()
	ctx := context.Background()
	_ = store.SaveJob(ctx, &jobs.NormalizeDocumentJob{JobID: "j1", Status: jobs.JobStatusCompleted})

	h := NewJobsHandler(store, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/j1", nil), "j1")
	if rec.Code != http.StatusOK {
		t.Errorf("GetJob status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil), "nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GetJob(missing) status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?status=completed", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ListJobs status = %d", rec.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}
