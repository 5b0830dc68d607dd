package pipeline

import (
	"context"
	"errors"
	"testing"

	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
)

// mockStorage is a mock implementation of StorageService for testing.
type mockStorage struct {
	data []byte
	err  error
}

func (m *mockStorage) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return m.data, m.err
}

func (m *mockStorage) ExtractFilenameFromGCSURI(uri string) string {
	return "events.json"
}

// mockRepo is a mock implementation of Repository that records calls.
type mockRepo struct {
	insertedDoc    *infra.DocumentRow
	insertedRows   []*infra.EventRow
	runStarted     bool
	runFailedErr   error
	runSucceeded   bool
	eventsTotal    int
	eventsResolved int
	docStatus      string
	docEventCount  int

	startRunErr error
	insertErr   error
}

func (m *mockRepo) InsertDocument(ctx context.Context, row *infra.DocumentRow) error {
	m.insertedDoc = row
	return nil
}

func (m *mockRepo) StartNormalizeRun(ctx context.Context, documentID string) (string, error) {
	if m.startRunErr != nil {
		return "", m.startRunErr
	}
	m.runStarted = true
	return "run-1", nil
}

func (m *mockRepo) MarkNormalizeRunFailed(ctx context.Context, normalizeRunID string, runErr error) {
	m.runFailedErr = runErr
}

func (m *mockRepo) MarkNormalizeRunSucceeded(ctx context.Context, normalizeRunID string, eventsTotal, eventsCategorized int) error {
	m.runSucceeded = true
	m.eventsTotal = eventsTotal
	m.eventsResolved = eventsCategorized
	return nil
}

func (m *mockRepo) MarkDocumentProcessed(ctx context.Context, documentID, status string, eventCount int) error {
	m.docStatus = status
	m.docEventCount = eventCount
	return nil
}

func (m *mockRepo) InsertEvents(ctx context.Context, rows []*infra.EventRow) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.insertedRows = rows
	return nil
}

const sampleDocument = `[
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
				"data": [
					{"title": "Aktien", "detail": {"text": "3,63"}},
					{"title": "Gebühr", "detail": {"text": "1,00 €"}}
				]
			}
		]}
	},
	{
		"timestamp": "2023-11-24T10:00:00.000+0000",
		"eventType": "something_unknown",
		"title": "Mystery",
		"amount": {"value": 5.0}
	}
]`

func TestNormalizeDocumentFromGCSWithDeps(t *testing.T) {
	storage := &mockStorage{data: []byte(sampleDocument)}
	repo := &mockRepo{}

	err := NormalizeDocumentFromGCSWithDeps(context.Background(), "gs://bucket/events.json", storage, repo)
	if err != nil {
		t.Fatalf("NormalizeDocumentFromGCSWithDeps: %v", err)
	}

	if repo.insertedDoc == nil {
		t.Fatal("no document inserted")
	}
	if repo.insertedDoc.OriginalFilename != "events.json" {
		t.Errorf("OriginalFilename = %q", repo.insertedDoc.OriginalFilename)
	}
	if repo.insertedDoc.ChecksumSHA256 == "" {
		t.Error("document checksum not set")
	}
	if !repo.runStarted {
		t.Error("normalize run not started")
	}

	if len(repo.insertedRows) != 2 {
		t.Fatalf("inserted %d rows, want 2", len(repo.insertedRows))
	}
	first := repo.insertedRows[0]
	if first.Title != "Siemens" || !first.Category.Valid || first.Category.StringVal != "TRADE_INVOICE" {
		t.Errorf("first row = %+v", first)
	}
	if !first.ISIN.Valid || first.ISIN.StringVal != "DE0007236101" {
		t.Errorf("first row ISIN = %+v", first.ISIN)
	}
	if first.Value == nil || first.Value.FloatString(2) != "-511.00" {
		t.Errorf("first row value = %v", first.Value)
	}
	second := repo.insertedRows[1]
	if second.Category.Valid {
		t.Errorf("uncategorized event got category %q", second.Category.StringVal)
	}

	if !repo.runSucceeded {
		t.Error("run not marked succeeded")
	}
	if repo.eventsTotal != 2 || repo.eventsResolved != 1 {
		t.Errorf("run counts = (%d, %d), want (2, 1)", repo.eventsTotal, repo.eventsResolved)
	}
	if repo.docStatus != "SUCCESS" || repo.docEventCount != 2 {
		t.Errorf("document marked (%q, %d), want (SUCCESS, 2)", repo.docStatus, repo.docEventCount)
	}
}

func TestNormalizeMarksRunFailedOnBadDocument(t *testing.T) {
	storage := &mockStorage{data: []byte(`not json`)}
	repo := &mockRepo{}

	err := NormalizeDocumentFromGCSWithDeps(context.Background(), "gs://bucket/bad.json", storage, repo)
	if err == nil {
		t.Fatal("want error for undecodable document")
	}
	if repo.runFailedErr == nil {
		t.Error("run not marked failed")
	}
	if repo.runSucceeded {
		t.Error("run marked succeeded despite failure")
	}
}

func TestNormalizeFetchErrorStopsBeforeDocumentInsert(t *testing.T) {
	storage := &mockStorage{err: errors.New("object missing")}
	repo := &mockRepo{}

	err := NormalizeDocumentFromGCSWithDeps(context.Background(), "gs://bucket/missing.json", storage, repo)
	if err == nil {
		t.Fatal("want error for fetch failure")
	}
	if repo.insertedDoc != nil {
		t.Error("document inserted despite fetch failure")
	}
	if repo.runFailedErr != nil {
		t.Error("run marked failed before any run existed")
	}
}

func TestNormalizeInsertErrorMarksRunFailed(t *testing.T) {
	storage := &mockStorage{data: []byte(sampleDocument)}
	repo := &mockRepo{insertErr: errors.New("quota exceeded")}

	err := NormalizeDocumentFromGCSWithDeps(context.Background(), "gs://bucket/events.json", storage, repo)
	if err == nil {
		t.Fatal("want error for insert failure")
	}
	if repo.runFailedErr == nil {
		t.Error("run not marked failed")
	}
}

func TestRatFromFloat(t *testing.T) {
	v := 3.63
	r := ratFromFloat(&v)
	if r == nil || r.FloatString(2) != "3.63" {
		t.Errorf("ratFromFloat(3.63) = %v", r)
	}
	if ratFromFloat(nil) != nil {
		t.Error("ratFromFloat(nil) != nil")
	}
}
