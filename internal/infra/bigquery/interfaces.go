package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// DocumentRepository abstracts the warehouse operations the normalization
// pipeline and API need. It enables mocking in tests.
type DocumentRepository interface {
	InsertDocument(ctx context.Context, row *DocumentRow) error
	ListAllDocuments(ctx context.Context) ([]*DocumentRow, error)
	FindDocumentByChecksum(ctx context.Context, checksum string) (*DocumentRow, error)
	MarkDocumentProcessed(ctx context.Context, documentID, status string, eventCount int) error

	StartNormalizeRun(ctx context.Context, documentID string) (string, error)
	MarkNormalizeRunFailed(ctx context.Context, normalizeRunID string, runErr error)
	MarkNormalizeRunSucceeded(ctx context.Context, normalizeRunID string, eventsTotal, eventsCategorized int) error

	InsertEvents(ctx context.Context, rows []*EventRow) error
	QueryEventsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*EventRow, error)

	Close() error
}

// BigQueryDocumentRepository is the concrete implementation of DocumentRepository
// that interacts with BigQuery. It holds a shared BigQuery client to avoid
// creating a new connection for each operation.
type BigQueryDocumentRepository struct {
	client *bigquery.Client
}

// NewBigQueryDocumentRepository creates a new instance of BigQueryDocumentRepository
// with a shared BigQuery client.
func NewBigQueryDocumentRepository(ctx context.Context) (*BigQueryDocumentRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryDocumentRepository: creating client: %w", err)
	}
	return &BigQueryDocumentRepository{
		client: client,
	}, nil
}

// Close closes the BigQuery client connection. This should be called when
// the repository is no longer needed to release resources.
func (r *BigQueryDocumentRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertDocument delegates to the existing InsertDocument function with the shared client.
func (r *BigQueryDocumentRepository) InsertDocument(ctx context.Context, row *DocumentRow) error {
	return InsertDocumentWithClient(ctx, r.client, row)
}

// ListAllDocuments delegates to the existing ListAllDocuments function with the shared client.
func (r *BigQueryDocumentRepository) ListAllDocuments(ctx context.Context) ([]*DocumentRow, error) {
	return ListAllDocumentsWithClient(ctx, r.client)
}

// FindDocumentByChecksum delegates to the existing FindDocumentByChecksum function with the shared client.
func (r *BigQueryDocumentRepository) FindDocumentByChecksum(ctx context.Context, checksum string) (*DocumentRow, error) {
	return FindDocumentByChecksumWithClient(ctx, r.client, checksum)
}

// MarkDocumentProcessed delegates to the existing MarkDocumentProcessed function with the shared client.
func (r *BigQueryDocumentRepository) MarkDocumentProcessed(ctx context.Context, documentID, status string, eventCount int) error {
	return MarkDocumentProcessedWithClient(ctx, r.client, documentID, status, eventCount)
}

// StartNormalizeRun delegates to the existing StartNormalizeRun function with the shared client.
func (r *BigQueryDocumentRepository) StartNormalizeRun(ctx context.Context, documentID string) (string, error) {
	return StartNormalizeRunWithClient(ctx, r.client, documentID)
}

// MarkNormalizeRunFailed delegates to the existing MarkNormalizeRunFailed function with the shared client.
func (r *BigQueryDocumentRepository) MarkNormalizeRunFailed(ctx context.Context, normalizeRunID string, runErr error) {
	MarkNormalizeRunFailedWithClient(ctx, r.client, normalizeRunID, runErr)
}

// MarkNormalizeRunSucceeded delegates to the existing MarkNormalizeRunSucceeded function with the shared client.
func (r *BigQueryDocumentRepository) MarkNormalizeRunSucceeded(ctx context.Context, normalizeRunID string, eventsTotal, eventsCategorized int) error {
	return MarkNormalizeRunSucceededWithClient(ctx, r.client, normalizeRunID, eventsTotal, eventsCategorized)
}

// InsertEvents delegates to the existing InsertEvents function with the shared client.
func (r *BigQueryDocumentRepository) InsertEvents(ctx context.Context, rows []*EventRow) error {
	return InsertEventsWithClient(ctx, r.client, rows)
}

// QueryEventsByDateRange delegates to the existing QueryEventsByDateRange function with the shared client.
func (r *BigQueryDocumentRepository) QueryEventsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*EventRow, error) {
	return QueryEventsByDateRangeWithClient(ctx, r.client, startDate, endDate)
}

var _ DocumentRepository = (*BigQueryDocumentRepository)(nil)
