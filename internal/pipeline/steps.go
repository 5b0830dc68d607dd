package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/tr-activity/internal/events"
	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
)

// PipelineStep represents a single step in the normalization pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	GCSURI         string
	DocumentID     string
	NormalizeRunID string
	DocumentBytes  []byte
	RawEvents      []map[string]interface{}
	Events         []*events.Event

	storage StorageService
	repo    Repository
}

// Step 1: FetchDocumentStep fetches the raw event document bytes from GCS.
type FetchDocumentStep struct{}

func (s *FetchDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	data, err := state.storage.FetchFromGCS(ctx, state.GCSURI)
	if err != nil {
		return err
	}
	state.DocumentBytes = data
	return nil
}

// Step 2: CreateDocumentStep creates a document record for the file.
type CreateDocumentStep struct{}

func (s *CreateDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	documentID, err := createDocument(ctx, state.repo, state.GCSURI, state.DocumentBytes)
	if err != nil {
		return err
	}
	state.DocumentID = documentID
	return nil
}

// Step 3: StartNormalizeRunStep starts a normalize run (status=RUNNING).
type StartNormalizeRunStep struct{}

func (s *StartNormalizeRunStep) Execute(ctx context.Context, state *PipelineState) error {
	normalizeRunID, err := state.repo.StartNormalizeRun(ctx, state.DocumentID)
	if err != nil {
		return err
	}
	state.NormalizeRunID = normalizeRunID
	return nil
}

// Step 4: DecodeEventsStep decodes the document into raw event maps.
type DecodeEventsStep struct{}

func (s *DecodeEventsStep) Execute(ctx context.Context, state *PipelineState) error {
	raws, err := DecodeRawEvents(state.DocumentBytes)
	if err != nil {
		state.repo.MarkNormalizeRunFailed(ctx, state.NormalizeRunID, err)
		return err
	}
	state.RawEvents = raws
	return nil
}

// Step 5: NormalizeEventsStep converts raw events into normalized events.
type NormalizeEventsStep struct{}

func (s *NormalizeEventsStep) Execute(ctx context.Context, state *PipelineState) error {
	evs, err := events.NormalizeAll(ctx, state.RawEvents, DefaultNormalizeWorkers)
	if err != nil {
		state.repo.MarkNormalizeRunFailed(ctx, state.NormalizeRunID, err)
		return err
	}
	state.Events = evs
	return nil
}

// Step 6: InsertEventsStep inserts the normalized events into the events table.
type InsertEventsStep struct{}

func (s *InsertEventsStep) Execute(ctx context.Context, state *PipelineState) error {
	rows, err := eventsToRows(state.Events, state.DocumentID, state.NormalizeRunID)
	if err != nil {
		state.repo.MarkNormalizeRunFailed(ctx, state.NormalizeRunID, err)
		return err
	}
	if err := state.repo.InsertEvents(ctx, rows); err != nil {
		state.repo.MarkNormalizeRunFailed(ctx, state.NormalizeRunID, err)
		return err
	}
	return nil
}

// Step 7: MarkSuccessStep marks the normalize run as SUCCESS and stamps the document.
type MarkSuccessStep struct{}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	total := len(state.Events)
	categorized := countCategorized(state.Events)

	if err := state.repo.MarkNormalizeRunSucceeded(ctx, state.NormalizeRunID, total, categorized); err != nil {
		return err
	}
	if err := state.repo.MarkDocumentProcessed(ctx, state.DocumentID, "SUCCESS", total); err != nil {
		return err
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewDocumentNormalizationPipeline creates the standard 7-step pipeline for
// normalizing a raw event document.
func NewDocumentNormalizationPipeline() *Pipeline {
	return NewPipeline(
		&FetchDocumentStep{},
		&CreateDocumentStep{},
		&StartNormalizeRunStep{},
		&DecodeEventsStep{},
		&NormalizeEventsStep{},
		&InsertEventsStep{},
		&MarkSuccessStep{},
	)
}

var _ Repository = (*infra.BigQueryDocumentRepository)(nil)
