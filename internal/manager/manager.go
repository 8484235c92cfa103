// Package manager owns the domain/document catalog and drives the
// indexing pass that chunks, embeds and stores every document.
package manager

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/lumenio-ai/lumen/internal/chunk"
	"github.com/lumenio-ai/lumen/internal/domain"
	"github.com/lumenio-ai/lumen/internal/embedding"
	"github.com/lumenio-ai/lumen/internal/storage"
	"github.com/lumenio-ai/lumen/internal/telemetry"
	"github.com/lumenio-ai/lumen/internal/vectorstore"
)

// Manager builds the domain catalog from storage and indexes it into the
// per-domain vector stores. The catalog is rebuilt wholesale on every
// (re)configuration; there is no incremental add/remove of documents.
type Manager struct {
	store    storage.Store
	strategy chunk.Strategy
	embedder embedding.Model
	provider vectorstore.Provider
	workers  int

	mu           sync.RWMutex
	domains      map[string]*domain.Domain
	vectorStores map[string]vectorstore.VectorStore
}

// New creates a Manager. CreateDomains must run before the catalog is
// usable.
func New(store storage.Store, strategy chunk.Strategy, embedder embedding.Model, provider vectorstore.Provider, workers int) *Manager {
	return &Manager{
		store:        store,
		strategy:     strategy,
		embedder:     embedder,
		provider:     provider,
		workers:      workers,
		domains:      make(map[string]*domain.Domain),
		vectorStores: make(map[string]vectorstore.VectorStore),
	}
}

// CreateDomains enumerates storage collections and builds each domain's
// document list concurrently, names only: content stays unloaded until the
// indexing pass. A failing domain build is logged and omitted from the
// catalog; sibling domains complete normally.
func (m *Manager) CreateDomains(ctx context.Context) error {
	collections, err := m.store.GetAllCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate collections: %w", err)
	}

	results := runBounded(ctx, m.workers, collections, m.buildDomain)

	domains := make(map[string]*domain.Domain, len(results))
	stores := make(map[string]vectorstore.VectorStore, len(results))
	for name, res := range results {
		if res.err != nil {
			log.Printf("domain %q build failed, omitting: %v", name, res.err)
			continue
		}
		domains[name] = res.value

		vs, err := m.provider.ForDomain(name)
		if err != nil {
			log.Printf("no vector store for domain %q: %v", name, err)
			continue
		}
		stores[name] = vs
	}

	m.mu.Lock()
	m.domains = domains
	m.vectorStores = stores
	m.mu.Unlock()

	log.Printf("catalog built: %d domains from %d collections", len(domains), len(collections))
	return nil
}

func (m *Manager) buildDomain(ctx context.Context, collection string) (*domain.Domain, error) {
	items, err := m.store.GetCollectionItems(ctx, collection)
	if err != nil {
		return nil, err
	}

	documents := make([]*domain.Document, 0, len(items))
	for i, item := range items {
		documents = append(documents, domain.NewDocument(collection, item, i))
	}

	return domain.NewDomain(collection, collectionDescription(collection), documents), nil
}

func collectionDescription(name string) string {
	return fmt.Sprintf("Description for %s", name)
}

// ApplyChunkingStrategy runs the full indexing pass over every document of
// every domain. The pass is sequential: each document's content
// is loaded, chunked, embedded, stored, and then evicted before the next
// document is touched, so resident memory stays bounded by one document.
// Per-document failures are logged and skipped, never fatal to the pass.
func (m *Manager) ApplyChunkingStrategy(ctx context.Context) error {
	for _, dom := range m.GetDomains() {
		for _, doc := range dom.Documents {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := m.indexDocument(ctx, dom, doc); err != nil {
				log.Printf("indexing %s/%s failed, skipping: %v", dom.Name, doc.Name, err)
			}
		}
	}
	return nil
}

// indexDocument loads, chunks, embeds and stores one document. Content and
// chunks are released unconditionally on the way out: eviction must happen
// only after the store call returns, and must happen even when it fails.
func (m *Manager) indexDocument(ctx context.Context, dom *domain.Domain, doc *domain.Document) error {
	ctx, span := telemetry.StartSpan(ctx, "manager.index_document", telemetry.SpanAttributes{
		Domain:    dom.Name,
		Document:  doc.Name,
		Operation: "index",
	})
	defer span.End()
	defer doc.Evict()

	if !doc.ContentLoaded() {
		content, err := m.store.GetItem(ctx, dom.Name, doc.Name)
		if err != nil {
			return fmt.Errorf("failed to load content: %w", err)
		}
		doc.SetContent(content)
	}

	chunks, err := m.strategy.Chunk(ctx, *doc.Content, doc.ID)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	// Denormalize document identity into every chunk so retrieval results
	// can be grouped without a catalog lookup.
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]interface{})
		}
		chunks[i].Metadata[domain.MetaDocumentID] = doc.ID
		chunks[i].Metadata[domain.MetaDocumentName] = doc.Name
	}
	doc.Chunks = chunks

	return m.EmbedAndStore(ctx, dom, doc)
}

// EmbedAndStore generates one embedding per chunk (batched) and persists
// the batch to the domain's vector store: exactly one store batch per
// document per pass.
func (m *Manager) EmbedAndStore(ctx context.Context, dom *domain.Domain, doc *domain.Document) error {
	m.mu.RLock()
	vs, ok := m.vectorStores[dom.Name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoVectorStore, dom.Name)
	}

	if len(doc.Chunks) == 0 {
		log.Printf("document %s/%s produced no chunks, skipping store", dom.Name, doc.Name)
		return nil
	}

	contents := make([]string, len(doc.Chunks))
	ids := make([]string, len(doc.Chunks))
	metadata := make([]map[string]interface{}, len(doc.Chunks))
	for i, c := range doc.Chunks {
		contents[i] = c.Content
		ids[i] = c.ID
		metadata[i] = c.Metadata
	}

	embeddings, err := m.embedder.GenerateEmbeddings(ctx, contents)
	if err != nil {
		return domain.NewUpstreamError("chunk embedding", err)
	}

	if len(embeddings) == 0 || len(ids) == 0 {
		log.Printf("document %s/%s produced no embeddings, skipping store", dom.Name, doc.Name)
		return nil
	}

	if err := vs.StoreEmbeddings(ctx, embeddings, metadata, ids, contents); err != nil {
		return domain.NewUpstreamError("vector store write", err)
	}
	return nil
}

// GetDomains returns the catalog sorted by name.
func (m *Manager) GetDomains() []*domain.Domain {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Domain, 0, len(m.domains))
	for _, d := range m.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetDomain returns the named domain.
func (m *Manager) GetDomain(name string) (*domain.Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.domains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDomainNotFound, name)
	}
	return d, nil
}

// GetDomainDocument returns the named document, lazily loading its content
// from storage when it is not resident (read-through).
func (m *Manager) GetDomainDocument(ctx context.Context, domainName, documentName string) (*domain.Document, error) {
	d, err := m.GetDomain(domainName)
	if err != nil {
		return nil, err
	}

	doc := d.Document(documentName)
	if doc == nil {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrDocumentNotFound, domainName, documentName)
	}

	if !doc.ContentLoaded() {
		content, err := m.store.GetItem(ctx, domainName, documentName)
		if err != nil {
			return nil, fmt.Errorf("failed to load content for %s/%s: %w", domainName, documentName, err)
		}
		doc.SetContent(content)
	}
	return doc, nil
}

// AddDomain registers an empty domain with no storage backing. Documents
// only appear through a full catalog rebuild.
func (m *Manager) AddDomain(name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.domains[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDomainAlreadyExists, name)
	}

	m.domains[name] = domain.NewDomain(name, description, nil)
	vs, err := m.provider.ForDomain(name)
	if err != nil {
		log.Printf("no vector store for domain %q: %v", name, err)
		return nil
	}
	m.vectorStores[name] = vs
	return nil
}

// DeleteDomain removes a domain from the catalog. Stored embeddings are
// not purged; the next full rebuild decides what is live.
func (m *Manager) DeleteDomain(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.domains[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrDomainNotFound, name)
	}
	delete(m.domains, name)
	delete(m.vectorStores, name)
	return nil
}

// VectorStores returns a snapshot of the domain→store map.
func (m *Manager) VectorStores() map[string]vectorstore.VectorStore {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]vectorstore.VectorStore, len(m.vectorStores))
	for name, vs := range m.vectorStores {
		out[name] = vs
	}
	return out
}
