package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentService manages the documents the memory source answers from.
type DocumentService struct {
	store    domain.DocumentStore
	embedder domain.EmbeddingClient
	logger   *zap.Logger
}

// NewDocumentService returns a service over s. A nil embedder stores
// documents without vectors; a nil store makes every call fail with
// ErrMemoryUnavailable.
func NewDocumentService(s domain.DocumentStore, embedder domain.EmbeddingClient, logger *zap.Logger) *DocumentService {
	return &DocumentService{store: s, embedder: embedder, logger: logger}
}

func (s *DocumentService) Create(ctx context.Context, d *domain.Document) error {
	if s.store == nil {
		return ErrMemoryUnavailable
	}
	if strings.TrimSpace(d.Body) == "" {
		return ErrDocumentBodyEmpty
	}
	if len(d.Keywords) == 0 {
		d.Keywords = ExtractKeywords(d.Title + " " + d.Body)
	}
	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, embeddingText(d))
		if err != nil {
			return fmt.Errorf("embed document: %w", err)
		}
		d.Embedding = vec
	}

	if err := s.store.Create(ctx, d); err != nil {
		return err
	}
	s.logger.Debug("document stored",
		zap.String("document_id", d.ID.String()),
		zap.Int("keywords", len(d.Keywords)),
	)
	return nil
}

func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	if s.store == nil {
		return nil, ErrMemoryUnavailable
	}
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.store == nil {
		return ErrMemoryUnavailable
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}

func embeddingText(d *domain.Document) string {
	if d.Title == "" {
		return d.Body
	}
	return d.Title + "\n\n" + d.Body
}
