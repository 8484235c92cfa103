package chunk

import (
	"context"

	"github.com/lumenio-ai/lumen/internal/domain"
)

// FixedSize chunks content with a sliding window of fixed width and
// constant overlap between adjacent windows.
type FixedSize struct {
	size    int
	overlap int
}

// NewFixedSize validates the window parameters. An overlap >= size would
// make the window stop advancing, so it is rejected here rather than
// guarded in the loop.
func NewFixedSize(size, overlap int) (*FixedSize, error) {
	if size <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= size {
		return nil, domain.ErrInvalidChunkOverlap
	}
	return &FixedSize{size: size, overlap: overlap}, nil
}

func (s *FixedSize) Name() string { return "fixed" }

// Chunk emits windows [start, start+size) advancing by size-overlap.
// Offsets are rune positions. Empty content yields an empty list.
func (s *FixedSize) Chunk(ctx context.Context, content, documentID string) ([]domain.Chunk, error) {
	if content == "" {
		return nil, nil
	}

	runes := []rune(content)
	step := s.size - s.overlap

	var chunks []domain.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + s.size
		atEnd := end >= len(runes)
		if atEnd {
			end = len(runes)
		}

		index := len(chunks)
		text := string(runes[start:end])
		metadata := map[string]interface{}{
			domain.MetaStart:      start,
			domain.MetaEnd:        end,
			domain.MetaChunkIndex: index,
		}
		if tokens, ok := countTokens(text); ok {
			metadata[domain.MetaTokenCount] = tokens
		}

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(documentID, index),
			DocumentID: documentID,
			Index:      index,
			Content:    text,
			Metadata:   metadata,
		})

		// A window that reached the end covers the remainder; advancing
		// further would only re-emit overlap.
		if atEnd {
			break
		}
	}

	return chunks, nil
}
