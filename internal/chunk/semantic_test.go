package chunk

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenio-ai/lumen/internal/domain"
)

// stubModel embeds each sentence as a single ordinal value and scores
// adjacent similarity as 1/(1+distance) between the values.
type stubModel struct {
	values []float32
	err    error
	calls  int
}

func (m *stubModel) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embs, err := m.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embs[0], nil
}

func (m *stubModel) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		value := float32(i)
		if i < len(m.values) {
			value = m.values[i]
		}
		out[i] = []float32{value}
	}
	return out, nil
}

func (m *stubModel) CalculateCosineSimilarity(a, b []float32) float64 {
	return 1.0 / (1.0 + math.Abs(float64(a[0])-float64(b[0])))
}

func TestNewSemantic_Validation(t *testing.T) {
	_, err := NewSemantic(0, &stubModel{})
	assert.Equal(t, domain.ErrInvalidMaxChunkSize, err)

	_, err = NewSemantic(100, nil)
	assert.Error(t, err)
}

func TestSemantic_EndToEndTrace(t *testing.T) {
	// Sentences "A." "B." "C." "D." embed as 0,1,2,3; every adjacent
	// boundary scores 0.5, so ties split leftmost. "A. B." is 5 runes,
	// above the bound of 4, so the split recurses down to single
	// sentences.
	s, err := NewSemantic(4, &stubModel{})
	require.NoError(t, err)

	chunks, err := s.Chunk(context.Background(), "A. B. C. D.", "doc_0")
	require.NoError(t, err)

	require.Len(t, chunks, 4)
	expected := []string{"A.", "B.", "C.", "D."}
	for i, c := range chunks {
		assert.Equal(t, expected[i], c.Content)
		assert.Equal(t, i, c.Metadata[domain.MetaSentenceFrom])
		assert.Equal(t, i+1, c.Metadata[domain.MetaSentenceTo])
		assert.Equal(t, domain.ChunkID("doc_0", i), c.ID)
	}
}

func TestSemantic_SplitsAtGloballyLowestBoundary(t *testing.T) {
	// Values 0,10,11,12: boundary 0 scores 1/11, boundaries 1 and 2
	// score 0.5. The first split must happen at boundary 0.
	s, err := NewSemantic(12, &stubModel{values: []float32{0, 10, 11, 12}})
	require.NoError(t, err)

	chunks, err := s.Chunk(context.Background(), "Aaaa. Bbbb. Cccc. Dddd.", "doc_0")
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, "Aaaa.", chunks[0].Content)
	assert.Equal(t, "Bbbb.", chunks[1].Content)
	assert.Equal(t, "Cccc. Dddd.", chunks[2].Content)
}

func TestSemantic_CoversRangeWithoutGapsOrOverlaps(t *testing.T) {
	s, err := NewSemantic(10, &stubModel{})
	require.NoError(t, err)

	content := "One two. Three four. Five six. Seven eight. Nine ten."
	sentences := SplitSentences(content)
	chunks, err := s.Chunk(context.Background(), content, "doc_0")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	next := 0
	for _, c := range chunks {
		from := c.Metadata[domain.MetaSentenceFrom].(int)
		to := c.Metadata[domain.MetaSentenceTo].(int)
		assert.Equal(t, next, from, "ranges must tile left-to-right")
		assert.Less(t, from, to)
		next = to
	}
	assert.Equal(t, len(sentences), next)
}

func TestSemantic_ChunkSizeBoundOrIrreducible(t *testing.T) {
	s, err := NewSemantic(8, &stubModel{})
	require.NoError(t, err)

	content := "Short. Thisisonereallylongunbreakablesentence. Tiny."
	chunks, err := s.Chunk(context.Background(), content, "doc_0")
	require.NoError(t, err)

	for _, c := range chunks {
		from := c.Metadata[domain.MetaSentenceFrom].(int)
		to := c.Metadata[domain.MetaSentenceTo].(int)
		if len([]rune(c.Content)) > 8 {
			assert.Equal(t, 1, to-from, "oversized chunk must be a single irreducible sentence")
		}
	}
}

func TestSemantic_Deterministic(t *testing.T) {
	s, err := NewSemantic(15, &stubModel{})
	require.NoError(t, err)

	content := "Alpha beta. Gamma delta. Epsilon zeta. Eta theta."
	first, err := s.Chunk(context.Background(), content, "doc_0")
	require.NoError(t, err)
	second, err := s.Chunk(context.Background(), content, "doc_0")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Content, second[i].Content)
		assert.Equal(t, first[i].Metadata[domain.MetaSentenceFrom], second[i].Metadata[domain.MetaSentenceFrom])
	}
}

func TestSemantic_DegenerateInputs(t *testing.T) {
	model := &stubModel{}
	s, err := NewSemantic(100, model)
	require.NoError(t, err)

	chunks, err := s.Chunk(context.Background(), "", "doc_0")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = s.Chunk(context.Background(), "   \n  ", "doc_0")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	assert.Zero(t, model.calls, "degenerate input must not call the embedding model")
}

func TestSemantic_SingleSentenceFits(t *testing.T) {
	s, err := NewSemantic(100, &stubModel{})
	require.NoError(t, err)

	chunks, err := s.Chunk(context.Background(), "Just one sentence.", "doc_0")
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Just one sentence.", chunks[0].Content)
}

func TestSemantic_EmbeddingFailurePropagates(t *testing.T) {
	cause := errors.New("embedding service down")
	s, err := NewSemantic(5, &stubModel{err: cause})
	require.NoError(t, err)

	_, err = s.Chunk(context.Background(), "A. B.", "doc_0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"A.", "B.", "C.", "D."}, SplitSentences("A. B. C. D."))
	assert.Equal(t, []string{"Hello!", "How are you?", "Fine."}, SplitSentences("Hello! How are you? Fine."))
	assert.Equal(t, []string{"line one", "line two"}, SplitSentences("line one\nline two"))
	assert.Empty(t, SplitSentences("   "))
	assert.Equal(t, []string{"no terminator"}, SplitSentences("no terminator"))
}

func TestSplitSentences_JoinRoundTrip(t *testing.T) {
	sentences := SplitSentences("One. Two. Three.")
	assert.Equal(t, "One. Two. Three.", strings.Join(sentences, " "))
}
