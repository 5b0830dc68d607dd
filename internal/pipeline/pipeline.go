package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/tr-activity/internal/gcsstore"
	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
	"github.com/dvloznov/tr-activity/internal/logger"
)

// NormalizeDocumentFromGCS processes a single raw event document stored in GCS.
// gcsURI should look like: "gs://bucket/path/to/events.json".
func NormalizeDocumentFromGCS(ctx context.Context, gcsURI string) error {
	repo, err := infra.NewBigQueryDocumentRepository(ctx)
	if err != nil {
		return fmt.Errorf("NormalizeDocumentFromGCS: %w", err)
	}
	defer repo.Close()

	return NormalizeDocumentFromGCSWithDeps(ctx, gcsURI, gcsstore.NewGCSStorageService(), repo)
}

// NormalizeDocumentFromGCSWithDeps runs the normalization pipeline with the
// provided storage and repository implementations. Tests inject mocks here.
func NormalizeDocumentFromGCSWithDeps(ctx context.Context, gcsURI string, storage StorageService, repo Repository) error {
	log := logger.FromContext(ctx)

	state := &PipelineState{
		GCSURI:  gcsURI,
		storage: storage,
		repo:    repo,
	}

	if err := NewDocumentNormalizationPipeline().Execute(ctx, state); err != nil {
		log.Error().
			Err(err).
			Str("gcs_uri", gcsURI).
			Str("document_id", state.DocumentID).
			Str("normalize_run_id", state.NormalizeRunID).
			Msg("document normalization failed")
		return err
	}

	log.Info().
		Str("gcs_uri", gcsURI).
		Str("document_id", state.DocumentID).
		Str("normalize_run_id", state.NormalizeRunID).
		Int("events_total", len(state.Events)).
		Int("events_categorized", countCategorized(state.Events)).
		Msg("document normalized")

	return nil
}
