package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

const documentColumns = `id, title, body, summary, url, keywords, metadata, created_at, updated_at`

// DocumentStore keeps memory-source documents in Postgres. Recall uses
// pgvector cosine distance when an embedding is supplied and full-text rank
// otherwise.
type DocumentStore struct {
	db *pgxpool.Pool
}

func NewDocumentStore(db *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Create(ctx context.Context, d *domain.Document) error {
	var embedding *pgvector.Vector
	if len(d.Embedding) > 0 {
		v := pgvector.NewVector(d.Embedding)
		embedding = &v
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO documents (title, body, summary, url, keywords, metadata, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		d.Title, d.Body, d.Summary, d.URL, d.Keywords, d.Metadata, embedding,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (s *DocumentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Title, &d.Body, &d.Summary, &d.URL, &d.Keywords, &d.Metadata, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *DocumentStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DocumentStore) Search(ctx context.Context, opts domain.DocumentSearchOpts) ([]domain.DocumentWithScore, error) {
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultQueryLimit
	}

	var (
		rows pgx.Rows
		err  error
	)
	if len(opts.Embedding) > 0 {
		rows, err = s.db.Query(ctx,
			`SELECT `+documentColumns+`, (1 - (embedding <=> $1))::float8 AS score
			 FROM documents
			 WHERE embedding IS NOT NULL
			 ORDER BY embedding <=> $1
			 LIMIT $2`,
			pgvector.NewVector(opts.Embedding), opts.Limit,
		)
	} else {
		// rank normalization 32 maps rank into [0,1)
		rows, err = s.db.Query(ctx,
			`SELECT `+documentColumns+`, ts_rank(search_vector, q, 32)::float8 AS score
			 FROM documents, plainto_tsquery('english', $1) q
			 WHERE search_vector @@ q
			 ORDER BY score DESC, created_at DESC
			 LIMIT $2`,
			opts.Query, opts.Limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var results []domain.DocumentWithScore
	for rows.Next() {
		var ds domain.DocumentWithScore
		if err := rows.Scan(
			&ds.ID, &ds.Title, &ds.Body, &ds.Summary, &ds.URL, &ds.Keywords, &ds.Metadata, &ds.CreatedAt, &ds.UpdatedAt,
			&ds.Score,
		); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		results = append(results, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document rows: %w", err)
	}
	return results, nil
}

func (s *DocumentStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
