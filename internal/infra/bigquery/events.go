package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

type EventRow struct {
	EventID string `bigquery:"event_id"` // REQUIRED

	DocumentID     string `bigquery:"document_id"`      // NULLABLE
	NormalizeRunID string `bigquery:"normalize_run_id"` // NULLABLE

	EventDate      civil.Date `bigquery:"event_date"`      // REQUIRED in schema
	EventTimestamp time.Time  `bigquery:"event_timestamp"` // REQUIRED

	Title    string              `bigquery:"title"`    // REQUIRED STRING
	Subtitle bigquery.NullString `bigquery:"subtitle"` // NULLABLE

	Category bigquery.NullString `bigquery:"category"` // NULLABLE

	Value  *big.Rat `bigquery:"value"`  // NULLABLE NUMERIC
	Fees   *big.Rat `bigquery:"fees"`   // NULLABLE NUMERIC
	Shares *big.Rat `bigquery:"shares"` // NULLABLE NUMERIC
	Taxes  *big.Rat `bigquery:"taxes"`  // NULLABLE NUMERIC

	ISIN bigquery.NullString `bigquery:"isin"` // NULLABLE
	Note bigquery.NullString `bigquery:"note"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)

	Raw bigquery.NullJSON `bigquery:"raw"` // NULLABLE JSON
}
