package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/tr-activity/internal/events"
	"github.com/dvloznov/tr-activity/internal/export"
	"github.com/dvloznov/tr-activity/internal/gcsstore"
	infraBQ "github.com/dvloznov/tr-activity/internal/infra/bigquery"
	"github.com/dvloznov/tr-activity/internal/logger"
	"github.com/dvloznov/tr-activity/internal/pipeline"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "normalize":
		runNormalize(log)
	case "ingest":
		runIngest(log)
	case "upload":
		runUpload(log)
	case "inspect":
		runInspect(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Brokerage Activity CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  normalize  Normalize a local raw event document and export CSV")
	fmt.Println("  ingest     Normalize a raw event document from GCS into BigQuery")
	fmt.Println("  upload     Upload a raw event document to GCS")
	fmt.Println("  inspect    Inspect a document and its normalized events")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runNormalize(log zerolog.Logger) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local raw event JSON document")
	outPath := fs.String("out", "", "Output CSV path (defaults to stdout)")
	lang := fs.String("lang", "en", "Output language (en or de)")
	isoDates := fs.Bool("iso-dates", false, "Write full timestamps instead of dates")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read document")
	}

	raws, err := pipeline.DecodeRawEvents(data)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode document")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	evs, err := events.NormalizeAll(ctx, raws, pipeline.DefaultNormalizeWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("Normalization failed")
	}

	formatter := export.NewFormatter(*lang)
	if *isoDates {
		formatter = formatter.WithDateLayout(export.ISO8601)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Str("out", *outPath).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	fmt.Fprint(out, formatter.Header())
	var exported int
	for _, ev := range evs {
		line := formatter.Format(ev)
		if line != "" {
			exported++
		}
		fmt.Fprint(out, line)
	}

	log.Info().
		Int("events_total", len(evs)).
		Int("events_exported", exported).
		Msg("Normalization completed")
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "GCS URI of the raw event document")
	fs.Parse(os.Args[2:])

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("gcs_uri", *gcsURI).Msg("Starting ingestion")

	if err := pipeline.NormalizeDocumentFromGCS(ctx, *gcsURI); err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Println("Ingestion completed successfully.")
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local raw event JSON document")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := gcsstore.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	documentID := fs.String("document-id", "", "Document ID to inspect")
	fs.Parse(os.Args[2:])

	if *documentID == "" {
		log.Fatal().Msg("Error: --document-id is required")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	// Get all documents and find the one with matching ID
	docs, err := infraBQ.ListAllDocuments(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list documents")
	}

	var doc *infraBQ.DocumentRow
	for _, d := range docs {
		if d.DocumentID == *documentID {
			doc = d
			break
		}
	}

	if doc == nil {
		log.Fatal().Msg("Document not found")
	}

	fmt.Println("\n=== Document Details ===")
	fmt.Printf("ID:       %s\n", doc.DocumentID)
	fmt.Printf("GCS URI:  %s\n", doc.GCSURI)
	fmt.Printf("Uploaded: %s\n", doc.UploadTS)
	fmt.Printf("Status:   %s\n", doc.NormalizeStatus)
	if doc.EventCount.Valid {
		fmt.Printf("Events:   %d\n", doc.EventCount.Int64)
	}

	// Query for a wide date range and filter by document ID
	startDate := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Now().AddDate(1, 0, 0)

	repo, err := infraBQ.NewBigQueryDocumentRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	allRows, err := repo.QueryEventsByDateRange(ctx, startDate, endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query events")
	}

	var rows []*infraBQ.EventRow
	for _, row := range allRows {
		if row.DocumentID == *documentID {
			rows = append(rows, row)
		}
	}

	fmt.Printf("\n=== Events (%d) ===\n", len(rows))
	for i, row := range rows {
		fmt.Printf("\n%d. %s\n", i+1, row.Title)
		fmt.Printf("   Date:     %s\n", row.EventDate)
		if row.Category.Valid {
			fmt.Printf("   Category: %s\n", row.Category.StringVal)
		}
		if row.Value != nil {
			fmt.Printf("   Value:    %s\n", row.Value.FloatString(2))
		}
		if row.Shares != nil {
			fmt.Printf("   Shares:   %s\n", row.Shares.FloatString(6))
		}
		if row.ISIN.Valid {
			fmt.Printf("   ISIN:     %s\n", row.ISIN.StringVal)
		}
	}
	fmt.Println()
}
