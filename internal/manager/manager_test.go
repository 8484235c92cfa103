package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumenio-ai/lumen/internal/domain"
	"github.com/lumenio-ai/lumen/internal/vectorstore"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAllCollections(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) GetCollectionItems(ctx context.Context, collection string) ([]string, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) GetItem(ctx context.Context, collection, item string) (string, error) {
	args := m.Called(ctx, collection, item)
	return args.String(0), args.Error(1)
}

type MockStrategy struct {
	mock.Mock
}

func (m *MockStrategy) Name() string { return "mock" }

func (m *MockStrategy) Chunk(ctx context.Context, content, documentID string) ([]domain.Chunk, error) {
	args := m.Called(ctx, content, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) CalculateCosineSimilarity(a, b []float32) float64 { return 0 }

// recordingStore counts store batches so tests can assert batching behavior.
type recordingStore struct {
	batches [][]string
}

func (r *recordingStore) StoreEmbeddings(ctx context.Context, embeddings [][]float32, metadata []map[string]interface{}, ids []string, contents []string) error {
	batch := make([]string, len(ids))
	copy(batch, ids)
	r.batches = append(r.batches, batch)
	return nil
}

func (r *recordingStore) Query(ctx context.Context, queryEmbedding []float32, topK int) ([]vectorstore.QueryResult, error) {
	return nil, nil
}

type recordingProvider struct {
	stores map[string]*recordingStore
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{stores: make(map[string]*recordingStore)}
}

func (p *recordingProvider) ForDomain(name string) (vectorstore.VectorStore, error) {
	s, ok := p.stores[name]
	if !ok {
		s = &recordingStore{}
		p.stores[name] = s
	}
	return s, nil
}

func constantEmbeddings(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out
}

func TestCreateDomainsBuildsCatalog(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal", "medical"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return([]string{"contract.txt", "statute.txt"}, nil)
	store.On("GetCollectionItems", mock.Anything, "medical").Return([]string{"anatomy.txt"}, nil)

	m := New(store, nil, nil, vectorstore.NewMemoryProvider(), 4)
	require.NoError(t, m.CreateDomains(context.Background()))

	domains := m.GetDomains()
	require.Len(t, domains, 2)
	assert.Equal(t, "legal", domains[0].Name)
	assert.Equal(t, "medical", domains[1].Name)

	require.Len(t, domains[0].Documents, 2)
	assert.Equal(t, "legal_doc_0", domains[0].Documents[0].ID)
	assert.Equal(t, "legal_doc_1", domains[0].Documents[1].ID)
	assert.Equal(t, "contract.txt", domains[0].Documents[0].Name)

	// Catalog construction is names only; nothing is loaded yet.
	for _, d := range domains {
		for _, doc := range d.Documents {
			assert.False(t, doc.ContentLoaded())
		}
	}
	store.AssertExpectations(t)
}

func TestCreateDomainsOmitsFailedDomain(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal", "medical"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return(nil, errors.New("bucket gone"))
	store.On("GetCollectionItems", mock.Anything, "medical").Return([]string{"anatomy.txt"}, nil)

	m := New(store, nil, nil, vectorstore.NewMemoryProvider(), 4)
	require.NoError(t, m.CreateDomains(context.Background()))

	domains := m.GetDomains()
	require.Len(t, domains, 1)
	assert.Equal(t, "medical", domains[0].Name)

	_, err := m.GetDomain("legal")
	assert.ErrorIs(t, err, domain.ErrDomainNotFound)
}

func TestCreateDomainsPropagatesEnumerationFailure(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return(nil, errors.New("network down"))

	m := New(store, nil, nil, vectorstore.NewMemoryProvider(), 4)
	assert.Error(t, m.CreateDomains(context.Background()))
}

func TestApplyChunkingStrategyIndexesAndEvicts(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return([]string{"contract.txt"}, nil)
	store.On("GetItem", mock.Anything, "legal", "contract.txt").Return("full contract text", nil)

	strategy := new(MockStrategy)
	strategy.On("Chunk", mock.Anything, "full contract text", "legal_doc_0").Return([]domain.Chunk{
		{ID: "legal_doc_0_chunk_0", DocumentID: "legal_doc_0", Index: 0, Content: "full contract"},
		{ID: "legal_doc_0_chunk_1", DocumentID: "legal_doc_0", Index: 1, Content: "contract text"},
	}, nil)

	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbeddings", mock.Anything, []string{"full contract", "contract text"}).
		Return(constantEmbeddings(2), nil)

	provider := newRecordingProvider()
	m := New(store, strategy, embedder, provider, 1)
	require.NoError(t, m.CreateDomains(context.Background()))
	require.NoError(t, m.ApplyChunkingStrategy(context.Background()))

	// One store batch per document, carrying every chunk.
	require.Len(t, provider.stores["legal"].batches, 1)
	assert.Equal(t, []string{"legal_doc_0_chunk_0", "legal_doc_0_chunk_1"}, provider.stores["legal"].batches[0])

	// Content and chunks are evicted once the document is stored.
	dom, err := m.GetDomain("legal")
	require.NoError(t, err)
	assert.False(t, dom.Documents[0].ContentLoaded())
	assert.Nil(t, dom.Documents[0].Chunks)

	store.AssertExpectations(t)
	strategy.AssertExpectations(t)
	embedder.AssertExpectations(t)
}

func TestApplyChunkingStrategyStampsDocumentMetadata(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return([]string{"contract.txt"}, nil)
	store.On("GetItem", mock.Anything, "legal", "contract.txt").Return("text", nil)

	strategy := new(MockStrategy)
	strategy.On("Chunk", mock.Anything, "text", "legal_doc_0").Return([]domain.Chunk{
		{ID: "legal_doc_0_chunk_0", DocumentID: "legal_doc_0", Content: "text"},
	}, nil)

	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbeddings", mock.Anything, mock.Anything).Return(constantEmbeddings(1), nil)

	provider := vectorstore.NewMemoryProvider()
	m := New(store, strategy, embedder, provider, 1)
	require.NoError(t, m.CreateDomains(context.Background()))
	require.NoError(t, m.ApplyChunkingStrategy(context.Background()))

	vs, err := provider.ForDomain("legal")
	require.NoError(t, err)
	results, err := vs.Query(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "legal_doc_0", results[0].Metadata[domain.MetaDocumentID])
	assert.Equal(t, "contract.txt", results[0].Metadata[domain.MetaDocumentName])
}

func TestApplyChunkingStrategyIsolatesDocumentFailures(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal", "medical"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return([]string{"contract.txt", "statute.txt"}, nil)
	store.On("GetCollectionItems", mock.Anything, "medical").Return([]string{"anatomy.txt"}, nil)

	// Exactly one document fails to load; every other document across both
	// domains must still be indexed.
	store.On("GetItem", mock.Anything, "legal", "contract.txt").Return("", domain.ErrItemNotFound)
	store.On("GetItem", mock.Anything, "legal", "statute.txt").Return("statute body", nil)
	store.On("GetItem", mock.Anything, "medical", "anatomy.txt").Return("anatomy body", nil)

	strategy := new(MockStrategy)
	strategy.On("Chunk", mock.Anything, "statute body", "legal_doc_1").Return([]domain.Chunk{
		{ID: "legal_doc_1_chunk_0", DocumentID: "legal_doc_1", Content: "statute body"},
	}, nil)
	strategy.On("Chunk", mock.Anything, "anatomy body", "medical_doc_0").Return([]domain.Chunk{
		{ID: "medical_doc_0_chunk_0", DocumentID: "medical_doc_0", Content: "anatomy body"},
	}, nil)

	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbeddings", mock.Anything, mock.Anything).Return(constantEmbeddings(1), nil)

	provider := newRecordingProvider()
	m := New(store, strategy, embedder, provider, 2)
	require.NoError(t, m.CreateDomains(context.Background()))
	require.NoError(t, m.ApplyChunkingStrategy(context.Background()))

	require.Len(t, provider.stores["legal"].batches, 1)
	assert.Equal(t, []string{"legal_doc_1_chunk_0"}, provider.stores["legal"].batches[0])
	require.Len(t, provider.stores["medical"].batches, 1)
	assert.Equal(t, []string{"medical_doc_0_chunk_0"}, provider.stores["medical"].batches[0])
}

func TestApplyChunkingStrategyEvictsOnEmbedFailure(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return([]string{"contract.txt"}, nil)
	store.On("GetItem", mock.Anything, "legal", "contract.txt").Return("text", nil)

	strategy := new(MockStrategy)
	strategy.On("Chunk", mock.Anything, "text", "legal_doc_0").Return([]domain.Chunk{
		{ID: "legal_doc_0_chunk_0", DocumentID: "legal_doc_0", Content: "text"},
	}, nil)

	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbeddings", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	provider := newRecordingProvider()
	m := New(store, strategy, embedder, provider, 1)
	require.NoError(t, m.CreateDomains(context.Background()))
	require.NoError(t, m.ApplyChunkingStrategy(context.Background()))

	assert.Empty(t, provider.stores["legal"].batches)

	dom, err := m.GetDomain("legal")
	require.NoError(t, err)
	assert.False(t, dom.Documents[0].ContentLoaded())
	assert.Nil(t, dom.Documents[0].Chunks)
}

func TestApplyChunkingStrategySkipsEmptyChunkList(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return([]string{"empty.txt"}, nil)
	store.On("GetItem", mock.Anything, "legal", "empty.txt").Return("", nil)

	strategy := new(MockStrategy)
	strategy.On("Chunk", mock.Anything, "", "legal_doc_0").Return([]domain.Chunk{}, nil)

	embedder := new(MockEmbedder)

	provider := newRecordingProvider()
	m := New(store, strategy, embedder, provider, 1)
	require.NoError(t, m.CreateDomains(context.Background()))
	require.NoError(t, m.ApplyChunkingStrategy(context.Background()))

	assert.Empty(t, provider.stores["legal"].batches)
	embedder.AssertNotCalled(t, "GenerateEmbeddings", mock.Anything, mock.Anything)
}

func TestEmbedAndStoreRequiresVectorStore(t *testing.T) {
	m := New(new(MockStore), nil, new(MockEmbedder), vectorstore.NewMemoryProvider(), 1)

	dom := domain.NewDomain("orphan", "", nil)
	doc := domain.NewDocument("orphan", "doc.txt", 0)
	doc.Chunks = []domain.Chunk{{ID: "orphan_doc_0_chunk_0", Content: "x"}}

	err := m.EmbedAndStore(context.Background(), dom, doc)
	assert.ErrorIs(t, err, domain.ErrNoVectorStore)
}

func TestGetDomainDocumentLazyLoads(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return([]string{"contract.txt"}, nil)
	store.On("GetItem", mock.Anything, "legal", "contract.txt").Return("contract body", nil).Once()

	m := New(store, nil, nil, vectorstore.NewMemoryProvider(), 1)
	require.NoError(t, m.CreateDomains(context.Background()))

	doc, err := m.GetDomainDocument(context.Background(), "legal", "contract.txt")
	require.NoError(t, err)
	require.True(t, doc.ContentLoaded())
	assert.Equal(t, "contract body", *doc.Content)

	// Second read serves from memory; GetItem is not called again.
	_, err = m.GetDomainDocument(context.Background(), "legal", "contract.txt")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestGetDomainDocumentNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetAllCollections", mock.Anything).Return([]string{"legal"}, nil)
	store.On("GetCollectionItems", mock.Anything, "legal").Return([]string{"contract.txt"}, nil)

	m := New(store, nil, nil, vectorstore.NewMemoryProvider(), 1)
	require.NoError(t, m.CreateDomains(context.Background()))

	_, err := m.GetDomainDocument(context.Background(), "legal", "missing.txt")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	_, err = m.GetDomainDocument(context.Background(), "nope", "contract.txt")
	assert.ErrorIs(t, err, domain.ErrDomainNotFound)
}

func TestAddAndDeleteDomain(t *testing.T) {
	m := New(new(MockStore), nil, nil, vectorstore.NewMemoryProvider(), 1)

	require.NoError(t, m.AddDomain("scratch", "ad-hoc domain"))
	assert.ErrorIs(t, m.AddDomain("scratch", "again"), domain.ErrDomainAlreadyExists)

	dom, err := m.GetDomain("scratch")
	require.NoError(t, err)
	assert.Equal(t, "ad-hoc domain", dom.Description)
	assert.Contains(t, m.VectorStores(), "scratch")

	require.NoError(t, m.DeleteDomain("scratch"))
	assert.ErrorIs(t, m.DeleteDomain("scratch"), domain.ErrDomainNotFound)
	assert.NotContains(t, m.VectorStores(), "scratch")
}

func TestRunBoundedIsolatesFailures(t *testing.T) {
	calls := map[string]error{
		"a": nil,
		"b": errors.New("boom"),
		"c": nil,
	}

	results := runBounded(context.Background(), 2, []string{"a", "b", "c"}, func(ctx context.Context, name string) (string, error) {
		return "v:" + name, calls[name]
	})

	require.Len(t, results, 3)
	assert.NoError(t, results["a"].err)
	assert.Equal(t, "v:a", results["a"].value)
	assert.Error(t, results["b"].err)
	assert.NoError(t, results["c"].err)
}
