package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type NormalizeRunRow struct {
	NormalizeRunID string `bigquery:"normalize_run_id"` // REQUIRED
	DocumentID     string `bigquery:"document_id"`      // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	NormalizerVersion string `bigquery:"normalizer_version"` // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	EventsTotal       bigquery.NullInt64 `bigquery:"events_total"`       // NULLABLE
	EventsCategorized bigquery.NullInt64 `bigquery:"events_categorized"` // NULLABLE

	Metadata bigquery.NullJSON `bigquery:"metadata"` // NULLABLE
}
