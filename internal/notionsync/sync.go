package notionsync

import (
	"context"
	"fmt"
	"time"

	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
	"github.com/dvloznov/tr-activity/internal/logger"
	"github.com/jomei/notionapi"
)

const (
	// BatchSize defines the number of events to process in a single batch
	BatchSize = 100
)

// SyncEvents syncs normalized events from BigQuery to Notion within the
// specified date range. The Event ID property on Notion pages makes the sync
// idempotent. This function:
// 1. Queries all existing Notion event pages
// 2. Deletes stale pages (not in the BigQuery active set)
// 3. Creates pages for events not yet in Notion
func SyncEvents(ctx context.Context, repo infra.DocumentRepository, notionClient NotionService, notionDBID string, startDate, endDate time.Time, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Time("start_date", startDate).
		Time("end_date", endDate).
		Bool("dry_run", dryRun).
		Msg("Starting event sync to Notion")

	// Query events from BigQuery (already filtered to successful runs only)
	rows, err := repo.QueryEventsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}

	log.Info().Int("event_count", len(rows)).Msg("Retrieved events from BigQuery")

	// Build set of valid event IDs from BigQuery
	validEventIDs := make(map[string]bool)
	for _, row := range rows {
		validEventIDs[row.EventID] = true
	}

	// Query all existing event pages from Notion
	log.Info().Msg("Querying existing events from Notion")
	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	// Build map of existing event IDs in Notion (for deduplication)
	existingEventIDs := make(map[string]bool)
	for _, page := range notionPages {
		evID := extractEventID(page)
		if evID != "" {
			existingEventIDs[evID] = true
		}
	}

	// Delete stale events from Notion (those not in the valid set)
	var deleted int
	for _, page := range notionPages {
		evID := extractEventID(page)

		// Delete pages without an Event ID (from old sync) or not in valid set
		if evID == "" || !validEventIDs[evID] {
			if dryRun {
				log.Info().
					Str("event_id", evID).
					Str("page_id", string(page.ID)).
					Msg("[DRY RUN] Would delete stale Notion page")
				deleted++
			} else {
				if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
					log.Warn().
						Err(err).
						Str("event_id", evID).
						Str("page_id", string(page.ID)).
						Msg("Failed to delete stale Notion page")
					continue
				}
				log.Info().
					Str("event_id", evID).
					Str("page_id", string(page.ID)).
					Msg("Deleted stale Notion page")
				deleted++
			}
		}
	}

	if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("Deleted stale events from Notion")
	}

	// Process events in batches
	var created, skipped int
	for i := 0; i < len(rows); i += BatchSize {
		end := i + BatchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := rows[i:end]
		log.Info().
			Int("batch_start", i).
			Int("batch_end", end).
			Int("batch_size", len(batch)).
			Msg("Processing batch")

		for _, row := range batch {
			// Skip if already exists in Notion
			if existingEventIDs[row.EventID] {
				skipped++
				continue
			}

			if dryRun {
				log.Info().
					Str("event_id", row.EventID).
					Msg("[DRY RUN] Would create new Notion page")
				created++
				continue
			}

			props := EventToNotionProperties(row)

			page, err := notionClient.CreatePage(ctx, notionDBID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("event_id", row.EventID).
					Msg("Failed to create Notion page")
				// Continue processing other events
				continue
			}
			log.Info().
				Str("event_id", row.EventID).
				Str("page_id", string(page.ID)).
				Msg("Created Notion page")
			created++
		}
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(rows)).
		Msg("Event sync completed")

	return nil
}

// queryAllNotionPages pages through the whole database.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractEventID extracts the event ID from a Notion page's properties.
// Returns empty string if not found.
func extractEventID(page notionapi.Page) string {
	if prop, ok := page.Properties["Event ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
