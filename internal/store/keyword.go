package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
)

// indexedDocument is the shape stored in the bleve index.
type indexedDocument struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Keywords string `json:"keywords"`
}

// KeywordStore is an in-process DocumentStore backed by an in-memory bleve
// index. It is used when no database is configured; contents do not survive
// a restart.
type KeywordStore struct {
	mu      sync.RWMutex
	mapping *mapping.IndexMappingImpl
	index   bleve.Index
	docs    map[uuid.UUID]*domain.Document
	now     func() time.Time
}

func NewKeywordStore() (*KeywordStore, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", text)
	docMapping.AddFieldMappingsAt("body", text)
	docMapping.AddFieldMappingsAt("keywords", text)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &KeywordStore{
		mapping: im,
		index:   index,
		docs:    make(map[uuid.UUID]*domain.Document),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *KeywordStore) Create(ctx context.Context, d *domain.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := s.now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[d.ID]; ok {
		return ErrConflict
	}
	err := s.index.Index(d.ID.String(), indexedDocument{
		Title:    d.Title,
		Body:     d.Body,
		Keywords: strings.Join(d.Keywords, " "),
	})
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	cp := *d
	s.docs[d.ID] = &cp
	return nil
}

func (s *KeywordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *KeywordStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	if err := s.index.Delete(id.String()); err != nil {
		return fmt.Errorf("delete from index: %w", err)
	}
	delete(s.docs, id)
	return nil
}

// Search ranks documents by the share of query terms they contain, so a
// document matching every term scores 1. Ties keep bleve's order.
func (s *KeywordStore) Search(ctx context.Context, opts domain.DocumentSearchOpts) ([]domain.DocumentWithScore, error) {
	terms := s.queryTerms(opts.Query)
	if len(terms) == 0 {
		return nil, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultQueryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	size := len(s.docs)
	if size == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(opts.Query))
	req.Size = size
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	coverage := s.termCoverage(terms, size)

	out := make([]domain.DocumentWithScore, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		d, ok := s.docs[id]
		if !ok {
			continue
		}
		matched := coverage[hit.ID]
		if matched == 0 {
			matched = 1
		}
		out = append(out, domain.DocumentWithScore{
			Document: *d,
			Score:    float64(matched) / float64(len(terms)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// termCoverage counts, per document id, how many of terms it matches.
// caller holds s.mu
func (s *KeywordStore) termCoverage(terms []string, size int) map[string]int {
	coverage := make(map[string]int)
	for _, term := range terms {
		req := bleve.NewSearchRequest(bleve.NewMatchQuery(term))
		req.Size = size
		res, err := s.index.Search(req)
		if err != nil {
			continue
		}
		for _, hit := range res.Hits {
			coverage[hit.ID]++
		}
	}
	return coverage
}

func (s *KeywordStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, d := range s.docs {
		if !d.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.index.Delete(id.String()); err != nil {
			return n, fmt.Errorf("delete from index: %w", err)
		}
		delete(s.docs, id)
		n++
	}
	return n, nil
}

func (s *KeywordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *KeywordStore) Close() error {
	return s.index.Close()
}

// queryTerms runs the query through the index analyzer so stop words and
// punctuation are dropped the same way they were at index time.
func (s *KeywordStore) queryTerms(q string) []string {
	tokens, err := s.mapping.AnalyzeText(standard.Name, []byte(q))
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var terms []string
	for _, tok := range tokens {
		term := string(tok.Term)
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}
