package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type DocumentRow struct {
	DocumentID string `bigquery:"document_id"` // REQUIRED
	GCSURI     string `bigquery:"gcs_uri"`     // REQUIRED

	SourceSystem string `bigquery:"source_system"` // NULLABLE

	UploadTS    time.Time              `bigquery:"upload_ts"`    // REQUIRED
	ProcessedTS bigquery.NullTimestamp `bigquery:"processed_ts"` // NULLABLE

	NormalizeStatus string `bigquery:"normalize_status"` // NULLABLE

	OriginalFilename string `bigquery:"original_filename"` // NULLABLE

	EventCount bigquery.NullInt64 `bigquery:"event_count"` // NULLABLE

	ChecksumSHA256 string `bigquery:"checksum_sha256"` // NULLABLE

	Metadata bigquery.NullJSON `bigquery:"metadata"` // NULLABLE
}
