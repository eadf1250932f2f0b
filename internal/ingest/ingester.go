// Package ingest mirrors a directory of text files into the memory source.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxFileBytes caps how much of a file becomes a document body.
const maxFileBytes = 1 << 20

// DocumentWriter is the subset of DocumentService the ingester needs.
type DocumentWriter interface {
	Create(ctx context.Context, d *domain.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ingester turns files into memory documents and keeps one document per
// path. Re-indexing a path replaces its previous document.
type Ingester struct {
	docs   DocumentWriter
	logger *zap.Logger

	mu    sync.Mutex
	paths map[string]uuid.UUID
}

func NewIngester(docs DocumentWriter, logger *zap.Logger) *Ingester {
	return &Ingester{docs: docs, logger: logger, paths: make(map[string]uuid.UUID)}
}

// IndexFile reads path and stores it as a document, replacing any document
// previously created from the same path.
func (in *Ingester) IndexFile(ctx context.Context, path string) error {
	data, err := readCapped(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("%s is not valid UTF-8 text", path)
	}

	body := strings.TrimSpace(string(data))
	if body == "" {
		return in.RemoveFile(ctx, path)
	}

	doc := &domain.Document{
		Title:    titleFor(path, body),
		Body:     body,
		URL:      "file://" + filepath.ToSlash(path),
		Metadata: map[string]any{"path": path},
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if err := in.docs.Create(ctx, doc); err != nil {
		return fmt.Errorf("store %s: %w", path, err)
	}
	if prev, ok := in.paths[path]; ok {
		if err := in.docs.Delete(ctx, prev); err != nil && !errors.Is(err, service.ErrDocumentNotFound) {
			in.logger.Warn("failed to delete replaced document", zap.String("path", path), zap.Error(err))
		}
	}
	in.paths[path] = doc.ID

	in.logger.Debug("file ingested", zap.String("path", path), zap.String("document_id", doc.ID.String()))
	return nil
}

// RemoveFile deletes the document created from path, if any.
func (in *Ingester) RemoveFile(ctx context.Context, path string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	id, ok := in.paths[path]
	if !ok {
		return nil
	}
	delete(in.paths, path)

	if err := in.docs.Delete(ctx, id); err != nil && !errors.Is(err, service.ErrDocumentNotFound) {
		return fmt.Errorf("delete document for %s: %w", path, err)
	}
	in.logger.Debug("file removed", zap.String("path", path))
	return nil
}

// DocumentID returns the document currently backing path.
func (in *Ingester) DocumentID(path string) (uuid.UUID, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	id, ok := in.paths[path]
	return id, ok
}

func readCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(io.LimitReader(f, maxFileBytes))
}

// titleFor uses a leading markdown heading when present and the file name
// otherwise.
func titleFor(path, body string) string {
	first, _, _ := strings.Cut(body, "\n")
	if strings.HasPrefix(first, "#") {
		if t := strings.TrimSpace(strings.TrimLeft(first, "#")); t != "" {
			return t
		}
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
