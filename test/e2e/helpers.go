//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lumenio-ai/lumen/internal/app"
	"github.com/lumenio-ai/lumen/internal/chat"
	"github.com/lumenio-ai/lumen/internal/chunk"
	"github.com/lumenio-ai/lumen/internal/config"
	"github.com/lumenio-ai/lumen/internal/domain"
	"github.com/lumenio-ai/lumen/internal/embedding"
	"github.com/lumenio-ai/lumen/internal/manager"
	"github.com/lumenio-ai/lumen/internal/query"
	"github.com/lumenio-ai/lumen/internal/server"
	"github.com/lumenio-ai/lumen/internal/storage"
	"github.com/lumenio-ai/lumen/internal/vectorstore"
)

const embeddingDims = 64

// wordHashEmbedder is a deterministic, offline stand-in for the embedding
// API. Each word is hashed into a fixed dimension, so texts that share
// words score higher under cosine similarity.
type wordHashEmbedder struct{}

func (wordHashEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, embeddingDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%embeddingDims]++
	}
	return v, nil
}

func (e wordHashEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (wordHashEmbedder) CalculateCosineSimilarity(a, b []float32) float64 {
	return embedding.CosineSimilarity(a, b)
}

// echoChatModel answers with a fixed sentence plus the system prompt so
// tests can assert retrieved context made it into the generation call.
type echoChatModel struct{}

func (echoChatModel) Chat(ctx context.Context, req chat.Request) (string, error) {
	return "Answer based on: " + req.SystemPrompt, nil
}

func (m echoChatModel) ChatStream(ctx context.Context, req chat.Request) (<-chan chat.StreamEvent, error) {
	answer, _ := m.Chat(ctx, req)
	out := make(chan chat.StreamEvent)
	go func() {
		defer close(out)
		for _, word := range strings.SplitAfter(answer, " ") {
			out <- chat.StreamEvent{Fragment: word}
		}
		out <- chat.StreamEvent{Done: true}
	}()
	return out, nil
}

// TestEnv holds the in-process server and its corpus directory.
type TestEnv struct {
	ServerURL  string
	DataFolder string
	HTTPClient *http.Client

	app    *app.App
	server *httptest.Server
}

// SeedDocument writes one corpus item under its domain directory.
func SeedDocument(t *testing.T, dataFolder, domainName, name, content string) {
	t.Helper()
	dir := filepath.Join(dataFolder, domainName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create domain dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
}

// SetupEnv builds a full server over a file corpus, an in-memory vector
// store and offline model stubs, then indexes the corpus.
func SetupEnv(t *testing.T) *TestEnv {
	t.Helper()
	ctx := context.Background()
	dataFolder := t.TempDir()

	SeedDocument(t, dataFolder, "legal", "contract.txt",
		"A contract requires offer acceptance and consideration between the parties.")
	SeedDocument(t, dataFolder, "legal", "statute.txt",
		"The statute of limitations bars claims filed after the deadline.")
	SeedDocument(t, dataFolder, "medical", "protocol.txt",
		"The treatment protocol requires patient consent before any procedure.")

	cfg := &config.Config{
		StorageProvider:     config.StorageFile,
		DataFolder:          dataFolder,
		VectorStoreProvider: config.VectorStoreMemory,
		ChunkStrategy:       config.StrategyFixed,
		ChunkSize:           200,
		ChunkOverlap:        20,
		NResults:            5,
		IndexWorkers:        2,
		UseReRanker:         true,
	}

	store, err := storage.NewFileStore(cfg.DataFolder)
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}

	embedder := wordHashEmbedder{}
	strategy, err := chunk.NewStrategy(cfg, embedder)
	if err != nil {
		t.Fatalf("failed to create chunk strategy: %v", err)
	}

	mgr := manager.New(store, strategy, embedder, vectorstore.NewMemoryProvider(), cfg.IndexWorkers)

	engine, err := query.NewEngine(mgr, embedder, echoChatModel{}, cfg.NResults,
		query.WithReRanker(query.NewScoreReRanker()))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	rt := &app.Runtime{
		Config:       cfg,
		Manager:      mgr,
		Engine:       engine,
		Conversation: domain.NewConversation(),
	}
	if err := rt.Index(ctx); err != nil {
		t.Fatalf("failed to index corpus: %v", err)
	}

	application := app.NewFromRuntime(rt)
	srv := httptest.NewServer(server.NewRouterFromService(server.NewService(application)))

	env := &TestEnv{
		ServerURL:  srv.URL,
		DataFolder: dataFolder,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		app:        application,
		server:     srv,
	}
	t.Cleanup(func() {
		srv.Close()
		application.Close()
	})
	return env
}

// apiResponse mirrors the server's envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET and decodes the envelope.
func (e *TestEnv) Get(t *testing.T, path string) (int, *apiResponse) {
	t.Helper()
	resp, err := e.HTTPClient.Get(e.ServerURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return e.decode(t, resp)
}

// Post performs a POST with a JSON body and decodes the envelope.
func (e *TestEnv) Post(t *testing.T, path string, body interface{}) (int, *apiResponse) {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}
	resp, err := e.HTTPClient.Post(e.ServerURL+path, "application/json", reqBody)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return e.decode(t, resp)
}

// Delete performs a DELETE and decodes the envelope.
func (e *TestEnv) Delete(t *testing.T, path string) (int, *apiResponse) {
	t.Helper()
	req, err := http.NewRequest("DELETE", e.ServerURL+path, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s failed: %v", path, err)
	}
	return e.decode(t, resp)
}

func (e *TestEnv) decode(t *testing.T, resp *http.Response) (int, *apiResponse) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", raw, err)
	}
	return resp.StatusCode, &out
}

// PostStream POSTs and returns the raw SSE data frames in arrival order.
func (e *TestEnv) PostStream(t *testing.T, path string, body interface{}) []string {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	resp, err := e.HTTPClient.Post(e.ServerURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("stream request returned %d: %s", resp.StatusCode, raw)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read stream: %v", err)
	}

	var frames []string
	for _, block := range strings.Split(string(raw), "\n\n") {
		line := strings.TrimSpace(block)
		if strings.HasPrefix(line, "data: ") {
			frames = append(frames, strings.TrimPrefix(line, "data: "))
		}
	}
	if len(frames) == 0 {
		t.Fatalf("no SSE frames in response: %q", raw)
	}
	return frames
}

// unmarshalData decodes an envelope's data field into out.
func unmarshalData(t *testing.T, resp *apiResponse, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("failed to decode data %q: %v", resp.Data, err)
	}
}
