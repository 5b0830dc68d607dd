package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	eventsTable = "events"
	dateFormat  = "2006-01-02"
)

// InsertEvents inserts a batch of EventRow into brokerage.events.
func InsertEvents(ctx context.Context, rows []*EventRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertEvents: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertEventsWithClient(ctx, client, rows)
}

// InsertEventsWithClient inserts a batch of EventRow into brokerage.events
// using the provided BigQuery client.
func InsertEventsWithClient(ctx context.Context, client *bigquery.Client, rows []*EventRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Use fully qualified table name to avoid project ID issues
	table := client.DatasetInProject(projectID, datasetID).Table(eventsTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertEvents: inserting rows: %w", err)
	}

	return nil
}

// QueryEventsByDateRange queries events within the specified date range.
func QueryEventsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*EventRow, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("QueryEventsByDateRange: bigquery client: %w", err)
	}
	defer client.Close()

	return QueryEventsByDateRangeWithClient(ctx, client, startDate, endDate)
}

// QueryEventsByDateRangeWithClient queries events within the specified date range
// using the provided BigQuery client. Only includes events from successful
// normalize runs.
func QueryEventsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, startDate, endDate time.Time) ([]*EventRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			e.event_id,
			e.document_id,
			e.normalize_run_id,
			e.event_date,
			e.event_timestamp,
			e.title,
			e.subtitle,
			e.category,
			e.value,
			e.fees,
			e.shares,
			e.taxes,
			e.isin,
			e.note,
			e.created_ts,
			e.raw
		FROM %s.events e
		INNER JOIN %s.normalize_runs nr
		  ON e.normalize_run_id = nr.normalize_run_id
		WHERE e.event_date >= @start_date
		  AND e.event_date <= @end_date
		  AND nr.status = 'SUCCESS'
		ORDER BY e.event_date, e.created_ts
	`, datasetID, datasetID))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate.Format(dateFormat)},
		{Name: "end_date", Value: endDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryEventsByDateRange: query read: %w", err)
	}

	var rows []*EventRow
	for {
		var r EventRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryEventsByDateRange: iterating: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
