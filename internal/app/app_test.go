package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenio-ai/lumen/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StorageProvider:     config.StorageFile,
		DataFolder:          t.TempDir(),
		VectorStoreProvider: config.VectorStoreMemory,
		ChunkStrategy:       config.StrategyFixed,
		ChunkSize:           100,
		ChunkOverlap:        10,
		NResults:            3,
		IndexWorkers:        2,
	}
}

func TestBuildRuntimeWiresCollaborators(t *testing.T) {
	rt, err := BuildRuntime(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Manager)
	assert.NotNil(t, rt.Engine)
	assert.NotNil(t, rt.Conversation)
}

func TestBuildRuntimeRejectsUnknownProviders(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageProvider = "ftp"
	_, err := BuildRuntime(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.VectorStoreProvider = "chroma"
	_, err = BuildRuntime(context.Background(), cfg)
	assert.Error(t, err)
}

func TestAppNewIndexesEmptyCorpus(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Empty(t, a.Current().Manager.GetDomains())
}

func TestAppRebuildSwapsRuntime(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	before := a.Current()

	next := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(next.DataFolder, "legal"), 0o755))

	require.NoError(t, a.Rebuild(context.Background(), next))
	after := a.Current()

	assert.NotSame(t, before, after)
	require.Len(t, after.Manager.GetDomains(), 1)
	assert.Equal(t, "legal", after.Manager.GetDomains()[0].Name)
}

func TestAppRebuildRejectsInvalidSettings(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	before := a.Current()

	bad := testConfig(t)
	bad.NResults = 0
	require.Error(t, a.Rebuild(context.Background(), bad))

	// The active runtime is untouched on failure.
	assert.Same(t, before, a.Current())
}
