package chunk

import (
	"context"
	"strings"

	"github.com/lumenio-ai/lumen/internal/domain"
	"github.com/lumenio-ai/lumen/internal/embedding"
)

// Semantic splits content at its weakest topical links: sentences are
// embedded, adjacent pairs scored by cosine similarity, and oversized
// ranges split at the lowest-similarity boundary until every chunk fits
// max size. Splitting at the weakest link keeps each chunk topically
// coherent while bounding its length.
type Semantic struct {
	maxChunkSize int
	model        embedding.Model
}

// NewSemantic validates the size bound and embedding model reference.
func NewSemantic(maxChunkSize int, model embedding.Model) (*Semantic, error) {
	if maxChunkSize <= 0 {
		return nil, domain.ErrInvalidMaxChunkSize
	}
	if model == nil {
		return nil, domain.NewValidationError("semantic strategy requires an embedding model")
	}
	return &Semantic{maxChunkSize: maxChunkSize, model: model}, nil
}

func (s *Semantic) Name() string { return "semantic" }

// sentenceRange is a half-open range [start, end) over the sentence list.
type sentenceRange struct {
	start, end int
}

// Chunk implements Strategy.
//
// Adversarial similarity distributions can force O(N) splits (each split
// peels off one sentence), so the recursion is expressed as an explicit
// work-list: depth stays constant while the emission order matches the
// recursive left-first traversal exactly.
func (s *Semantic) Chunk(ctx context.Context, content, documentID string) ([]domain.Chunk, error) {
	if content == "" {
		return nil, nil
	}

	sentences := SplitSentences(content)
	if len(sentences) == 0 {
		return nil, nil
	}

	embeddings, err := s.model.GenerateEmbeddings(ctx, sentences)
	if err != nil {
		return nil, domain.NewUpstreamError("sentence embedding", err)
	}

	// One similarity per adjacent pair: similarities[i] scores the
	// boundary between sentence i and i+1.
	similarities := make([]float64, len(sentences)-1)
	for i := 0; i < len(sentences)-1; i++ {
		similarities[i] = s.model.CalculateCosineSimilarity(embeddings[i], embeddings[i+1])
	}

	var chunks []domain.Chunk
	stack := []sentenceRange{{start: 0, end: len(sentences)}}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if r.start >= r.end {
			continue
		}

		text := joinSentences(sentences[r.start:r.end])
		// A single sentence is irreducible even above the bound.
		if len([]rune(text)) <= s.maxChunkSize || r.end-r.start == 1 {
			chunks = append(chunks, s.emit(documentID, len(chunks), text, r))
			continue
		}

		split := weakestBoundary(similarities, r)
		// Right range pushed first so the left is processed next,
		// preserving left-to-right emission.
		stack = append(stack, sentenceRange{start: split + 1, end: r.end})
		stack = append(stack, sentenceRange{start: r.start, end: split + 1})
	}

	return chunks, nil
}

func (s *Semantic) emit(documentID string, index int, text string, r sentenceRange) domain.Chunk {
	metadata := map[string]interface{}{
		domain.MetaSentenceFrom: r.start,
		domain.MetaSentenceTo:   r.end,
		domain.MetaChunkIndex:   index,
	}
	if tokens, ok := countTokens(text); ok {
		metadata[domain.MetaTokenCount] = tokens
	}
	return domain.Chunk{
		ID:         domain.ChunkID(documentID, index),
		DocumentID: documentID,
		Index:      index,
		Content:    text,
		Metadata:   metadata,
	}
}

// weakestBoundary returns the sentence index whose following boundary has
// the lowest similarity within the range. Ties resolve to the leftmost
// boundary, keeping splits deterministic.
func weakestBoundary(similarities []float64, r sentenceRange) int {
	split := r.start
	lowest := similarities[r.start]
	for i := r.start + 1; i < r.end-1; i++ {
		if similarities[i] < lowest {
			lowest = similarities[i]
			split = i
		}
	}
	return split
}

// SplitSentences applies a simple delimiter rule: sentences end at '.',
// '!', '?' or a newline. This is approximate by design, not full sentence
// segmentation.
func SplitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range content {
		switch r {
		case '.', '!', '?':
			current.WriteRune(r)
			flush()
		case '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return sentences
}

func joinSentences(sentences []string) string {
	return strings.Join(sentences, " ")
}
