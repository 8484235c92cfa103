package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI mocks the raw embedding call
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	api := new(MockAPI)
	client := NewClientWithAPI(api, 3)

	ctx := context.Background()
	api.On("CreateEmbeddings", ctx, []string{"hello"}).Return([][]float32{{0.1, 0.2, 0.3}}, nil)

	emb, err := client.GenerateEmbedding(ctx, "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, emb)
	api.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	api := new(MockAPI)
	client := NewClientWithAPI(api, 3)

	_, err := client.GenerateEmbedding(context.Background(), "")

	assert.Equal(t, ErrEmptyText, err)
	api.AssertNotCalled(t, "CreateEmbeddings")
}

func TestClient_GenerateEmbeddings_Batch(t *testing.T) {
	api := new(MockAPI)
	client := NewClientWithAPI(api, 2)

	ctx := context.Background()
	texts := []string{"a", "b", "c"}
	api.On("CreateEmbeddings", ctx, texts).Return([][]float32{{1, 0}, {0, 1}, {1, 1}}, nil)

	embeddings, err := client.GenerateEmbeddings(ctx, texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	assert.Equal(t, []float32{0, 1}, embeddings[1])
}

func TestClient_GenerateEmbeddings_EmptyBatch(t *testing.T) {
	client := NewClientWithAPI(new(MockAPI), 2)

	_, err := client.GenerateEmbeddings(context.Background(), nil)

	assert.Equal(t, ErrEmptyBatch, err)
}

func TestClient_GenerateEmbeddings_WrongDimensions(t *testing.T) {
	api := new(MockAPI)
	client := NewClientWithAPI(api, 4)

	ctx := context.Background()
	api.On("CreateEmbeddings", ctx, []string{"a"}).Return([][]float32{{1, 2}}, nil)

	_, err := client.GenerateEmbeddings(ctx, []string{"a"})

	assert.True(t, errors.Is(err, ErrWrongDimensions))
}

func TestClient_GenerateEmbeddings_UpstreamError(t *testing.T) {
	api := new(MockAPI)
	client := NewClientWithAPI(api, 2)

	ctx := context.Background()
	api.On("CreateEmbeddings", ctx, []string{"a"}).Return(nil, errors.New("rate limited"))

	_, err := client.GenerateEmbeddings(ctx, []string{"a"})

	assert.ErrorContains(t, err, "rate limited")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
