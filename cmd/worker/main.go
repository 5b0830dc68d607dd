package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/tr-activity/internal/jobs"
	"github.com/dvloznov/tr-activity/internal/jobs/inmemory"
	"github.com/dvloznov/tr-activity/internal/logger"
	"github.com/dvloznov/tr-activity/internal/pipeline"
)

func main() {
	workers := flag.Int("workers", 2, "Number of concurrent normalization jobs")
	flag.Parse()

	// Initialize logger
	log := logger.New()

	// Initialize job store and queue
	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	log.Info().Msg("Starting worker service")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	// Create job handler that processes normalization jobs
	handler := func(ctx context.Context, job jobs.Job) error {
		normJob, ok := job.(*jobs.NormalizeDocumentJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", normJob.JobID).
			Str("gcs_uri", normJob.GCSURI).
			Msg("Processing normalization job")

		// Execute the pipeline
		err := pipeline.NormalizeDocumentFromGCS(ctx, normJob.GCSURI)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", normJob.JobID).
				Msg("Pipeline execution failed")
			return err
		}

		log.Info().
			Str("job_id", normJob.JobID).
			Msg("Pipeline execution completed successfully")

		return nil
	}

	// Start consuming jobs
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Cancel context to stop workers
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	// Close the queue
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
