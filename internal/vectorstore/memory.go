package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lumenio-ai/lumen/internal/embedding"
)

// MemoryStore is a brute-force cosine similarity index. It backs tests and
// local runs where no database is available.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]int
	entries []memoryEntry
}

type memoryEntry struct {
	id        string
	content   string
	metadata  map[string]interface{}
	embedding []float32
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

// StoreEmbeddings upserts the batch; existing ids are overwritten in place.
func (s *MemoryStore) StoreEmbeddings(ctx context.Context, embeddings [][]float32, metadata []map[string]interface{}, ids []string, contents []string) error {
	if len(embeddings) != len(ids) || len(metadata) != len(ids) || len(contents) != len(ids) {
		return fmt.Errorf("misaligned batch: %d embeddings, %d metadata, %d ids, %d contents",
			len(embeddings), len(metadata), len(ids), len(contents))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		entry := memoryEntry{
			id:        id,
			content:   contents[i],
			metadata:  metadata[i],
			embedding: embeddings[i],
		}
		if pos, ok := s.byID[id]; ok {
			s.entries[pos] = entry
			continue
		}
		s.byID[id] = len(s.entries)
		s.entries = append(s.entries, entry)
	}
	return nil
}

// Query scores every entry by cosine similarity and returns the topK.
func (s *MemoryStore) Query(ctx context.Context, queryEmbedding []float32, topK int) ([]QueryResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]QueryResult, 0, len(s.entries))
	for _, e := range s.entries {
		results = append(results, QueryResult{
			ID:       e.id,
			Content:  e.content,
			Score:    embedding.CosineSimilarity(queryEmbedding, e.embedding),
			Metadata: e.metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// MemoryProvider hands out one shared MemoryStore per domain.
type MemoryProvider struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{stores: make(map[string]*MemoryStore)}
}

// ForDomain returns the domain's store, creating it on first use.
func (p *MemoryProvider) ForDomain(name string) (VectorStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	store, ok := p.stores[name]
	if !ok {
		store = NewMemoryStore()
		p.stores[name] = store
	}
	return store, nil
}
