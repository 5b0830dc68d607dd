package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const documentsTable = "documents"

// InsertDocument inserts a single DocumentRow into brokerage.documents.
func InsertDocument(ctx context.Context, row *DocumentRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertDocument: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertDocumentWithClient(ctx, client, row)
}

// InsertDocumentWithClient inserts a single DocumentRow into brokerage.documents
// using the provided BigQuery client.
func InsertDocumentWithClient(ctx context.Context, client *bigquery.Client, row *DocumentRow) error {
	inserter := client.Dataset(datasetID).Table(documentsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertDocument: inserting row: %w", err)
	}

	return nil
}

// MarkDocumentProcessed sets processed_ts, normalize_status and event_count on a document.
func MarkDocumentProcessed(ctx context.Context, documentID, status string, eventCount int) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("MarkDocumentProcessed: bigquery client: %w", err)
	}
	defer client.Close()

	return MarkDocumentProcessedWithClient(ctx, client, documentID, status, eventCount)
}

// MarkDocumentProcessedWithClient sets processed_ts, normalize_status and event_count
// using the provided BigQuery client.
func MarkDocumentProcessedWithClient(ctx context.Context, client *bigquery.Client, documentID, status string, eventCount int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET processed_ts = @processed_ts,
		    normalize_status = @normalize_status,
		    event_count = @event_count
		WHERE document_id = @document_id
	`, datasetID, documentsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "processed_ts", Value: time.Now()},
		{Name: "normalize_status", Value: status},
		{Name: "event_count", Value: int64(eventCount)},
		{Name: "document_id", Value: documentID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkDocumentProcessed: running update query: %w", err)
	}

	jobStatus, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkDocumentProcessed: waiting for job: %w", err)
	}
	if err := jobStatus.Err(); err != nil {
		return fmt.Errorf("MarkDocumentProcessed: job error: %w", err)
	}

	return nil
}

// ListAllDocuments retrieves all documents from the database.
func ListAllDocuments(ctx context.Context) ([]*DocumentRow, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("ListAllDocuments: creating client: %w", err)
	}
	defer client.Close()

	return ListAllDocumentsWithClient(ctx, client)
}

// ListAllDocumentsWithClient retrieves all documents using the provided BigQuery client.
func ListAllDocumentsWithClient(ctx context.Context, client *bigquery.Client) ([]*DocumentRow, error) {
	query := fmt.Sprintf(`
		SELECT
			document_id,
			gcs_uri,
			source_system,
			upload_ts,
			processed_ts,
			normalize_status,
			original_filename,
			event_count,
			checksum_sha256,
			metadata
		FROM `+"`%s.%s.documents`"+`
		ORDER BY upload_ts DESC
	`, projectID, datasetID)

	q := client.Query(query)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAllDocumentsWithClient: reading query: %w", err)
	}

	var documents []*DocumentRow
	for {
		var row DocumentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAllDocumentsWithClient: iterating: %w", err)
		}
		documents = append(documents, &row)
	}

	return documents, nil
}

// FindDocumentByChecksum retrieves a document by its SHA-256 checksum.
// Returns nil if no document with the given checksum exists.
func FindDocumentByChecksum(ctx context.Context, checksum string) (*DocumentRow, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByChecksum: creating client: %w", err)
	}
	defer client.Close()

	return FindDocumentByChecksumWithClient(ctx, client, checksum)
}

// FindDocumentByChecksumWithClient retrieves a document by checksum using the
// provided BigQuery client.
func FindDocumentByChecksumWithClient(ctx context.Context, client *bigquery.Client, checksum string) (*DocumentRow, error) {
	query := fmt.Sprintf(`
		SELECT
			document_id,
			gcs_uri,
			source_system,
			upload_ts,
			processed_ts,
			normalize_status,
			original_filename,
			event_count,
			checksum_sha256,
			metadata
		FROM `+"`%s.%s.documents`"+`
		WHERE checksum_sha256 = @checksum
		LIMIT 1
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "checksum", Value: checksum},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByChecksumWithClient: reading query: %w", err)
	}

	var row DocumentRow
	err = it.Next(&row)
	if err == iterator.Done {
		// No document found with this checksum
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByChecksumWithClient: reading row: %w", err)
	}

	return &row, nil
}
