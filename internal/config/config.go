package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Chunk strategy names accepted by the factory.
const (
	StrategyFixed    = "fixed"
	StrategySemantic = "semantic"
)

// Vector store providers.
const (
	VectorStoreMemory   = "memory"
	VectorStorePGVector = "pgvector"
)

// Storage providers.
const (
	StorageFile = "file"
	StorageS3   = "s3"
)

// Config holds the full service configuration. The same structure is
// accepted as the settings object of the reconfiguration endpoint, which
// rebuilds the manager/engine pair from scratch.
type Config struct {
	Port  string `envconfig:"PORT" default:"8080" json:"port"`
	Debug bool   `envconfig:"DEBUG" default:"false" json:"debug"`

	StorageProvider string `envconfig:"STORAGE_PROVIDER" default:"file" json:"storage_provider"`
	DataFolder      string `envconfig:"DATA_FOLDER" default:"./data" json:"data_folder"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID" json:"-"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY" json:"-"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"lumen-corpus" json:"s3_bucket,omitempty"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1" json:"s3_region,omitempty"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY" json:"-"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002" json:"embedding_model"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini" json:"chat_model"`

	VectorStoreProvider string `envconfig:"VECTOR_STORE_PROVIDER" default:"memory" json:"vector_store_provider"`
	DatabaseURL         string `envconfig:"DATABASE_URL" json:"database_url,omitempty"`

	ChunkStrategy string `envconfig:"CHUNK_STRATEGY" default:"fixed" json:"chunk_strategy"`
	ChunkSize     int    `envconfig:"CHUNK_SIZE" default:"1000" json:"chunk_size"`
	ChunkOverlap  int    `envconfig:"CHUNK_OVERLAP" default:"200" json:"chunk_overlap"`
	MaxChunkSize  int    `envconfig:"MAX_CHUNK_SIZE" default:"1000" json:"max_chunk_size"`

	NResults          int  `envconfig:"N_RESULTS" default:"5" json:"n_results"`
	UseReRanker       bool `envconfig:"USE_RE_RANKER" default:"true" json:"use_re_ranker"`
	UseQueryOptimizer bool `envconfig:"USE_QUERY_OPTIMIZER" default:"false" json:"use_query_optimizer"`

	// IndexWorkers bounds the task group used for catalog construction.
	IndexWorkers int `envconfig:"INDEX_WORKERS" default:"4" json:"index_workers"`

	// ReindexInterval enables the periodic full re-index worker when > 0.
	ReindexInterval time.Duration `envconfig:"REINDEX_INTERVAL" default:"0" json:"reindex_interval"`
}

// Load reads configuration from the environment (and .env when present)
// and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LUMEN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is Load or exit.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate rejects configurations that would misbehave at runtime. Chunk
// parameter checks happen here so a non-terminating overlap never reaches
// the chunking loop.
func (c *Config) Validate() error {
	if c.NResults <= 0 {
		return fmt.Errorf("N_RESULTS must be a positive integer, got %d", c.NResults)
	}
	switch c.ChunkStrategy {
	case StrategyFixed:
		if c.ChunkSize <= 0 {
			return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
		}
		if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
			return fmt.Errorf("CHUNK_OVERLAP must satisfy 0 <= overlap < size, got overlap=%d size=%d", c.ChunkOverlap, c.ChunkSize)
		}
	case StrategySemantic:
		if c.MaxChunkSize <= 0 {
			return fmt.Errorf("MAX_CHUNK_SIZE must be positive, got %d", c.MaxChunkSize)
		}
	default:
		return fmt.Errorf("unknown chunk strategy %q", c.ChunkStrategy)
	}
	switch c.VectorStoreProvider {
	case VectorStoreMemory:
	case VectorStorePGVector:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the pgvector store")
		}
	default:
		return fmt.Errorf("unknown vector store provider %q", c.VectorStoreProvider)
	}
	switch c.StorageProvider {
	case StorageFile:
		if c.DataFolder == "" {
			return fmt.Errorf("DATA_FOLDER is required for file storage")
		}
	case StorageS3:
		if !c.HasS3() {
			return fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.StorageProvider)
	}
	if c.IndexWorkers <= 0 {
		return fmt.Errorf("INDEX_WORKERS must be positive, got %d", c.IndexWorkers)
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
