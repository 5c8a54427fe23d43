package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data", cfg.Paths.InputDir)
	assert.Equal(t, filepath.Join("outputs", "extracted_images"), cfg.Paths.ImagesDir)
	assert.Equal(t, "docling", cfg.Converter.Type)
	assert.Equal(t, 150, cfg.Renderer.DPI)
	assert.Equal(t, 400, cfg.Chunker.Size)
	assert.Equal(t, 80, cfg.Chunker.Overlap)
	assert.Equal(t, "flat", cfg.Index.Type)
	assert.Equal(t, 6, cfg.Retriever.TopK)
}

func TestLoad_PartialConfigGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  size: 200\npaths:\n  output_dir: out\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Chunker.Size)
	assert.Equal(t, 80, cfg.Chunker.Overlap)
	assert.Equal(t, "out", cfg.Paths.OutputDir)
	assert.Equal(t, filepath.Join("out", "tables_json"), cfg.Paths.TablesJSON)
	assert.Equal(t, filepath.Join("out", "index_bundle.gob"), cfg.Paths.BundleFile)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Retriever.TopK = 12

	require.NoError(t, Save(path, cfg))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, back.Retriever.TopK)
	assert.Equal(t, cfg.Paths, back.Paths)
}
