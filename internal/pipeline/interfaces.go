package pipeline

import (
	"context"

	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
)

// StorageService is an interface for storage operations.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
	ExtractFilenameFromGCSURI(uri string) string
}

// Repository is the subset of warehouse operations the normalization
// pipeline needs. infra.BigQueryDocumentRepository satisfies it.
type Repository interface {
	InsertDocument(ctx context.Context, row *infra.DocumentRow) error
	StartNormalizeRun(ctx context.Context, documentID string) (string, error)
	MarkNormalizeRunFailed(ctx context.Context, normalizeRunID string, runErr error)
	MarkNormalizeRunSucceeded(ctx context.Context, normalizeRunID string, eventsTotal, eventsCategorized int) error
	MarkDocumentProcessed(ctx context.Context, documentID, status string, eventCount int) error
	InsertEvents(ctx context.Context, rows []*infra.EventRow) error
}
