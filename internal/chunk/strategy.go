// Package chunk turns document content into ordered, bounded text slices.
package chunk

import (
	"context"
	"fmt"

	"github.com/lumenio-ai/lumen/internal/config"
	"github.com/lumenio-ai/lumen/internal/domain"
	"github.com/lumenio-ai/lumen/internal/embedding"
)

// Strategy produces an ordered chunk list for one document. Parameters are
// immutable once constructed.
type Strategy interface {
	Name() string
	Chunk(ctx context.Context, content, documentID string) ([]domain.Chunk, error)
}

// NewStrategy is the keyed factory selecting a strategy from configuration.
// The semantic strategy needs an embedding model; passing nil for it with
// the semantic key is a configuration error.
func NewStrategy(cfg *config.Config, model embedding.Model) (Strategy, error) {
	switch cfg.ChunkStrategy {
	case config.StrategyFixed:
		return NewFixedSize(cfg.ChunkSize, cfg.ChunkOverlap)
	case config.StrategySemantic:
		return NewSemantic(cfg.MaxChunkSize, model)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownChunkStrategy, cfg.ChunkStrategy)
	}
}
