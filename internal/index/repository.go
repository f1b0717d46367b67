package index

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// Entry is a row in the faq_passages table.
type Entry struct {
	ID        uuid.UUID
	Question  string
	Answer    string
	Category  []string
	Keywords  []string
	Embedding []float32
	CreatedAt time.Time
}

// Neighbor is a nearest-neighbor search hit with its cosine similarity.
type Neighbor struct {
	ID       uuid.UUID
	Question string
	Answer   string
	Category []string
	Score    float64
}

// Searcher is the read side of the FAQ index, queried once per question.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]Neighbor, error)
}

// PostgresRepository implements the FAQ passage index using pgx + pgvector.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new passage index repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Search returns the topK nearest passages by cosine similarity, best first.
// Similarity is 1 - cosine distance, so scores live in [0,1] for normalized
// embeddings.
func (r *PostgresRepository) Search(ctx context.Context, embedding []float32, topK int) ([]Neighbor, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := r.pool.Query(ctx,
		`SELECT id, question, answer, category,
		        1 - (embedding <=> $1) AS similarity
		 FROM faq_passages
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("searching passages: %w", err)
	}
	defer rows.Close()

	var neighbors []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.ID, &n.Question, &n.Answer, &n.Category, &n.Score); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, rows.Err()
}

// InsertBatch bulk-inserts embedded FAQ entries. Used by the offline indexer.
func (r *PostgresRepository) InsertBatch(ctx context.Context, entries []Entry) error {
	batch := &pgx.Batch{}
	for i := range entries {
		e := &entries[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		batch.Queue(
			`INSERT INTO faq_passages (id, question, answer, category, keywords, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.Question, e.Answer, e.Category, e.Keywords, pgvector.NewVector(e.Embedding),
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting passage: %w", err)
		}
	}
	return nil
}

// Count returns the number of indexed passages.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM faq_passages`).Scan(&count)
	return count, err
}

// Reset drops all indexed passages so the corpus can be rebuilt from scratch.
func (r *PostgresRepository) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE faq_passages`); err != nil {
		return fmt.Errorf("truncating passages: %w", err)
	}
	return nil
}
