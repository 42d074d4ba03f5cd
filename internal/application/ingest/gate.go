package ingestapp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
)

// Admission is the ContentGate decision for one file.
type Admission struct {
	File *ingest.IngestedFile
	// Done is set when this content was already completed; it holds the
	// stored counts and the file must not be parsed again.
	Done *ingest.IngestionSummary
}

// ContentGate deduplicates file contents per source by SHA-256.
type ContentGate struct {
	files ingest.IngestedFileRepository
}

// NewContentGate creates a new ContentGate
func NewContentGate(files ingest.IngestedFileRepository) *ContentGate {
	return &ContentGate{files: files}
}

// Fingerprint returns the hex SHA-256 of the file at path and its size.
func Fingerprint(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, ingest.NewFileError(ingest.FileErrorAccess, path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, ingest.NewFileError(ingest.FileErrorFingerprint, path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Admit fingerprints path and moves its record for src into processing,
// unless the same content was already completed.
func (g *ContentGate) Admit(ctx context.Context, src *ingest.Source, path string) (*Admission, error) {
	fingerprint, size, err := Fingerprint(path)
	if err != nil {
		return nil, err
	}

	existing, err := g.files.FindByFingerprint(ctx, src.ID, fingerprint)
	switch {
	case err == nil:
		return g.reopen(ctx, existing)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, fmt.Errorf("find file record: %w", err)
	}

	file := ingest.NewIngestedFile(src.ID, filepath.Base(path), path, size, fingerprint)
	res, err := g.files.Create(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}
	if !res.IsConflict() {
		return &Admission{File: file}, nil
	}

	// created concurrently by another caller
	existing, err = g.files.FindByFingerprint(ctx, src.ID, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("find file record: %w", err)
	}
	return g.reopen(ctx, existing)
}

func (g *ContentGate) reopen(ctx context.Context, file *ingest.IngestedFile) (*Admission, error) {
	if file.IsCompleted() {
		return &Admission{File: file, Done: file.StoredSummary()}, nil
	}
	if err := file.StartProcessing(); err != nil {
		return nil, err
	}
	if err := g.files.Save(ctx, file); err != nil {
		return nil, fmt.Errorf("save file record: %w", err)
	}
	return &Admission{File: file}, nil
}
