package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PGStore is one domain's slice of the shared pgvector-backed chunk table.
type PGStore struct {
	db         dbtx
	domainName string
}

// dbtx is the subset of pgxpool.Pool used here; pgx.Tx satisfies it too.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewPGStore scopes a store to one domain over the shared pool.
func NewPGStore(pool *pgxpool.Pool, domainName string) *PGStore {
	return &PGStore{db: pool, domainName: domainName}
}

// NewPGStoreWithTx scopes a store to one domain inside a transaction.
func NewPGStoreWithTx(tx dbtx, domainName string) *PGStore {
	return &PGStore{db: tx, domainName: domainName}
}

// StoreEmbeddings upserts the batch keyed on (domain, chunk_id).
func (s *PGStore) StoreEmbeddings(ctx context.Context, embeddings [][]float32, metadata []map[string]interface{}, ids []string, contents []string) error {
	if len(embeddings) != len(ids) || len(metadata) != len(ids) || len(contents) != len(ids) {
		return fmt.Errorf("misaligned batch: %d embeddings, %d metadata, %d ids, %d contents",
			len(embeddings), len(metadata), len(ids), len(contents))
	}

	for i, id := range ids {
		meta, err := json.Marshal(metadata[i])
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for chunk %s: %w", id, err)
		}

		_, err = s.db.Exec(ctx,
			`INSERT INTO chunks (domain, chunk_id, content, metadata, embedding)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (domain, chunk_id)
			 DO UPDATE SET content = EXCLUDED.content,
			               metadata = EXCLUDED.metadata,
			               embedding = EXCLUDED.embedding,
			               updated_at = now()`,
			s.domainName,
			id,
			contents[i],
			meta,
			pgvector.NewVector(embeddings[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to store chunk %s: %w", id, err)
		}
	}

	return nil
}

// Query returns the topK nearest chunks by cosine distance.
func (s *PGStore) Query(ctx context.Context, queryEmbedding []float32, topK int) ([]QueryResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	rows, err := s.db.Query(ctx,
		`SELECT chunk_id, content, metadata, 1 - (embedding <=> $1) AS score
		 FROM chunks
		 WHERE domain = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(queryEmbedding),
		s.domainName,
		topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var r QueryResult
		var meta []byte
		if err := rows.Scan(&r.ID, &r.Content, &meta, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal chunk metadata: %w", err)
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk rows: %w", err)
	}

	return results, nil
}

// PGProvider scopes PGStores onto a shared connection pool.
type PGProvider struct {
	pool *pgxpool.Pool
}

func NewPGProvider(pool *pgxpool.Pool) *PGProvider {
	return &PGProvider{pool: pool}
}

// ForDomain returns a store scoped to the named domain.
func (p *PGProvider) ForDomain(name string) (VectorStore, error) {
	return NewPGStore(p.pool, name), nil
}
