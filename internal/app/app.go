// Package app assembles configured collaborators into a runtime and owns
// the swap performed on reconfiguration.
package app

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"

	"github.com/lumenio-ai/lumen/internal/chat"
	"github.com/lumenio-ai/lumen/internal/chunk"
	"github.com/lumenio-ai/lumen/internal/config"
	"github.com/lumenio-ai/lumen/internal/domain"
	"github.com/lumenio-ai/lumen/internal/embedding"
	"github.com/lumenio-ai/lumen/internal/manager"
	"github.com/lumenio-ai/lumen/internal/query"
	"github.com/lumenio-ai/lumen/internal/storage"
	"github.com/lumenio-ai/lumen/internal/vectorstore"
)

// Runtime is one fully-built manager/engine pair plus the conversation it
// serves. Reconfiguration never mutates a runtime; it builds a new one and
// the App swaps the active reference.
type Runtime struct {
	Config       *config.Config
	Manager      *manager.Manager
	Engine       *query.Engine
	Conversation *domain.Conversation

	pool *pgxpool.Pool
}

// BuildRuntime wires storage, embedding, chunking, vector stores, the
// manager and the engine from one settings object. The catalog is not
// built yet; call Index.
func BuildRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build storage: %w", err)
	}

	embedder := embedding.NewClientWithConfig(embedding.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  openai.EmbeddingModel(cfg.EmbeddingModel),
	})

	strategy, err := chunk.NewStrategy(cfg, embedder)
	if err != nil {
		return nil, err
	}

	provider, pool, err := newVectorProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mgr := manager.New(store, strategy, embedder, provider, cfg.IndexWorkers)

	var opts []query.Option
	if cfg.UseReRanker {
		opts = append(opts, query.WithReRanker(query.NewScoreReRanker()))
	}
	if cfg.UseQueryOptimizer {
		opts = append(opts, query.WithOptimizer(query.NewWhitespaceOptimizer()))
	}

	chatModel := chat.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.ChatModel)
	engine, err := query.NewEngine(mgr, embedder, chatModel, cfg.NResults, opts...)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}

	return &Runtime{
		Config:       cfg,
		Manager:      mgr,
		Engine:       engine,
		Conversation: domain.NewConversation(),
		pool:         pool,
	}, nil
}

// Index builds the catalog and runs the full indexing pass.
func (r *Runtime) Index(ctx context.Context) error {
	if err := r.Manager.CreateDomains(ctx); err != nil {
		return err
	}
	return r.Manager.ApplyChunkingStrategy(ctx)
}

// Close releases resources held by the runtime.
func (r *Runtime) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageProvider {
	case config.StorageFile:
		return storage.NewFileStore(cfg.DataFolder)
	case config.StorageS3:
		return storage.NewS3Store(ctx, storage.S3StoreConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}

func newVectorProvider(ctx context.Context, cfg *config.Config) (vectorstore.Provider, *pgxpool.Pool, error) {
	switch cfg.VectorStoreProvider {
	case config.VectorStoreMemory:
		return vectorstore.NewMemoryProvider(), nil, nil
	case config.VectorStorePGVector:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		return vectorstore.NewPGProvider(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store provider %q", cfg.VectorStoreProvider)
	}
}

// App holds the active runtime behind an atomic reference so requests in
// flight keep the runtime they started with across a reconfiguration.
type App struct {
	current atomic.Pointer[Runtime]
}

// New builds and indexes the initial runtime.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	rt, err := BuildRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := rt.Index(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	a := &App{}
	a.current.Store(rt)
	return a, nil
}

// NewFromRuntime wraps an already-built runtime. The caller is
// responsible for indexing it.
func NewFromRuntime(rt *Runtime) *App {
	a := &App{}
	a.current.Store(rt)
	return a
}

// Current returns the active runtime.
func (a *App) Current() *Runtime {
	return a.current.Load()
}

// Rebuild constructs and indexes a runtime from the new settings, then
// atomically swaps it in. The old runtime's resources are released; the
// old runtime is never mutated. On failure the active runtime stays
// untouched.
func (a *App) Rebuild(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return domain.NewValidationError("invalid settings: %v", err)
	}

	rt, err := BuildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	if err := rt.Index(ctx); err != nil {
		rt.Close()
		return err
	}

	old := a.current.Swap(rt)
	if old != nil {
		old.Close()
	}
	log.Printf("runtime rebuilt: %d domains active", len(rt.Manager.GetDomains()))
	return nil
}

// Reindex re-runs the full catalog build and indexing pass on the active
// runtime. Every document is re-embedded and re-stored; there is no
// change detection.
func (a *App) Reindex(ctx context.Context) error {
	return a.Current().Index(ctx)
}

// Close releases the active runtime.
func (a *App) Close() {
	if rt := a.current.Swap(nil); rt != nil {
		rt.Close()
	}
}
