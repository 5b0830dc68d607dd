package bigquery

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/tr-activity/internal/logger"
	"github.com/google/uuid"
)

const normalizeRunsTable = "normalize_runs"

var (
	projectID = envOr("BQ_PROJECT_ID", "studious-union-470122-v7")
	datasetID = envOr("BQ_DATASET_ID", "brokerage")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// StartNormalizeRun inserts a new row into brokerage.normalize_runs with status=RUNNING
// and returns the generated normalize_run_id.
func StartNormalizeRun(ctx context.Context, documentID string) (string, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("StartNormalizeRun: bigquery client: %w", err)
	}
	defer client.Close()

	return StartNormalizeRunWithClient(ctx, client, documentID)
}

// StartNormalizeRunWithClient inserts a new row into brokerage.normalize_runs with
// status=RUNNING and returns the generated normalize_run_id using the provided
// BigQuery client.
func StartNormalizeRunWithClient(ctx context.Context, client *bigquery.Client, documentID string) (string, error) {
	normalizeRunID := uuid.NewString()
	started := time.Now()

	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			normalize_run_id,
			document_id,
			started_ts,
			normalizer_version,
			status
		)
		VALUES (
			@normalize_run_id,
			@document_id,
			@started_ts,
			@normalizer_version,
			@status
		)
	`, datasetID, normalizeRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "normalize_run_id", Value: normalizeRunID},
		{Name: "document_id", Value: documentID},
		{Name: "started_ts", Value: started},
		{Name: "normalizer_version", Value: "v1"},
		{Name: "status", Value: "RUNNING"},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("StartNormalizeRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("StartNormalizeRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("StartNormalizeRun: job error: %w", err)
	}

	return normalizeRunID, nil
}

// MarkNormalizeRunFailed sets status=FAILED, finished_ts and error_message.
func MarkNormalizeRunFailed(ctx context.Context, normalizeRunID string, runErr error) {
	log := logger.FromContext(ctx)

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		log.Error().
			Err(err).
			Str("normalize_run_id", normalizeRunID).
			Msg("MarkNormalizeRunFailed: bigquery client error")
		return
	}
	defer client.Close()

	MarkNormalizeRunFailedWithClient(ctx, client, normalizeRunID, runErr)
}

// MarkNormalizeRunFailedWithClient sets status=FAILED, finished_ts and error_message
// using the provided BigQuery client.
func MarkNormalizeRunFailedWithClient(ctx context.Context, client *bigquery.Client, normalizeRunID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE normalize_run_id = @normalize_run_id
	`, datasetID, normalizeRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "normalize_run_id", Value: normalizeRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("normalize_run_id", normalizeRunID).
			Msg("MarkNormalizeRunFailed: running update query")
		return
	}

	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("normalize_run_id", normalizeRunID).
			Msg("MarkNormalizeRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().
			Err(err).
			Str("normalize_run_id", normalizeRunID).
			Msg("MarkNormalizeRunFailed: job completed with error")
	}
}

// MarkNormalizeRunSucceeded sets status=SUCCESS, finished_ts and event counts,
// clearing error_message.
func MarkNormalizeRunSucceeded(ctx context.Context, normalizeRunID string, eventsTotal, eventsCategorized int) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("MarkNormalizeRunSucceeded: bigquery client: %w", err)
	}
	defer client.Close()

	return MarkNormalizeRunSucceededWithClient(ctx, client, normalizeRunID, eventsTotal, eventsCategorized)
}

// MarkNormalizeRunSucceededWithClient sets status=SUCCESS, finished_ts and event
// counts using the provided BigQuery client.
func MarkNormalizeRunSucceededWithClient(ctx context.Context, client *bigquery.Client, normalizeRunID string, eventsTotal, eventsCategorized int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    events_total = @events_total,
		    events_categorized = @events_categorized,
		    error_message = ""
		WHERE normalize_run_id = @normalize_run_id
	`, datasetID, normalizeRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "events_total", Value: int64(eventsTotal)},
		{Name: "events_categorized", Value: int64(eventsCategorized)},
		{Name: "normalize_run_id", Value: normalizeRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkNormalizeRunSucceeded: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkNormalizeRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkNormalizeRunSucceeded: job error: %w", err)
	}

	return nil
}
