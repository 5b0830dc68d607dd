package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	bigquerylib "cloud.google.com/go/bigquery"
	"github.com/dvloznov/tr-activity/internal/gcsstore"
	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
	"github.com/google/uuid"
)

// createDocument inserts a row into the documents table for this file.
func createDocument(ctx context.Context, repo Repository, gcsURI string, data []byte) (string, error) {
	// Generate a UUID for this document
	documentID := uuid.NewString()

	// Extract filename from GCS URI
	// e.g. "gs://bucket/folder/events.json" → "events.json"
	filename := gcsstore.ExtractFilenameFromGCSURI(gcsURI)

	row := &infra.DocumentRow{
		DocumentID:       documentID,
		GCSURI:           gcsURI,
		SourceSystem:     DefaultSourceSystem,
		UploadTS:         time.Now(),
		NormalizeStatus:  "PENDING",
		OriginalFilename: filename,
		ChecksumSHA256:   checksumOf(data),
		Metadata:         bigquerylib.NullJSON{Valid: false}, // NULL for now
	}

	if err := repo.InsertDocument(ctx, row); err != nil {
		return "", fmt.Errorf("createDocument: inserting row: %w", err)
	}

	return documentID, nil
}

func checksumOf(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
