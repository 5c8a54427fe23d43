package vision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docqa/internal/domain"
)

type fakeCaptioner struct {
	caption string
	err     error
}

func (f *fakeCaptioner) Caption(ctx context.Context, imagePath string) (string, error) {
	return f.caption, f.err
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) Recognize(ctx context.Context, imagePath string) (string, error) {
	return f.text, f.err
}

type fakeCompleter struct {
	prompts []string
	out     string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

func writeImage(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644))
}

func TestDescriber_MissingDirCreatedAndEmptyResult(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	d := NewDescriber(&fakeCaptioner{}, &fakeOCR{}, &fakeCompleter{}, false, zap.NewNop())

	out, err := d.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, out)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDescriber_EmptyDirYieldsEmptyResult(t *testing.T) {
	d := NewDescriber(&fakeCaptioner{}, &fakeOCR{}, &fakeCompleter{}, false, zap.NewNop())
	out, err := d.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDescriber_DescribesRasterImagesOnly(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.png")
	writeImage(t, dir, "b.JPG")
	writeImage(t, dir, "notes.txt")

	comp := &fakeCompleter{out: "a long description"}
	d := NewDescriber(&fakeCaptioner{caption: "a cat"}, &fakeOCR{text: "hello"}, comp, false, zap.NewNop())

	out, err := d.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Contains(t, out, "a.png")
	assert.Contains(t, out, "b.JPG")
	assert.NotContains(t, out, "notes.txt")

	desc := out["a.png"]
	assert.Equal(t, "a cat", desc.Short)
	assert.Equal(t, "hello", desc.OCR)
	assert.Equal(t, "a long description", desc.Long)
}

func TestDescriber_CaptionErrorUsesPlaceholder(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "bad.png")

	comp := &fakeCompleter{out: "expanded anyway"}
	d := NewDescriber(&fakeCaptioner{err: errors.New("unreadable")}, &fakeOCR{}, comp, false, zap.NewNop())

	out, err := d.Run(context.Background(), dir)
	require.NoError(t, err)
	desc := out["bad.png"]
	assert.Equal(t, "(caption error: unreadable)", desc.Short)
	assert.Equal(t, "expanded anyway", desc.Long)
	require.Len(t, comp.prompts, 1)
	assert.Contains(t, comp.prompts[0], "(caption error: unreadable)")
}

func TestDescriber_SkipExpandOnCaptionError(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "bad.png")

	comp := &fakeCompleter{out: "should not run"}
	d := NewDescriber(&fakeCaptioner{err: errors.New("unreadable")}, &fakeOCR{text: "printed text"}, comp, true, zap.NewNop())

	out, err := d.Run(context.Background(), dir)
	require.NoError(t, err)
	desc := out["bad.png"]
	assert.Equal(t, "printed text", desc.OCR)
	assert.Empty(t, desc.Long)
	assert.Empty(t, comp.prompts)
}

func TestDescriber_OCRLineOmittedWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.png")

	comp := &fakeCompleter{out: "long"}
	d := NewDescriber(&fakeCaptioner{caption: "a chart"}, &fakeOCR{}, comp, false, zap.NewNop())

	_, err := d.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, comp.prompts, 1)
	assert.NotContains(t, comp.prompts[0], "Detected text inside image:")
	assert.Contains(t, comp.prompts[0], "Short caption: a chart")
}

func TestDescriber_OCRFailureTolerated(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.png")

	comp := &fakeCompleter{out: "long"}
	d := NewDescriber(&fakeCaptioner{caption: "a dog"}, &fakeOCR{err: errors.New("engine down")}, comp, false, zap.NewNop())

	out, err := d.Run(context.Background(), dir)
	require.NoError(t, err)
	desc := out["a.png"]
	assert.Equal(t, "a dog", desc.Short)
	assert.Empty(t, desc.OCR)
	assert.Equal(t, "long", desc.Long)
}

func TestSaveLoadCaptions_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image_captions.json")
	captions := map[string]domain.ImageDescription{
		"a.png": {Short: "s", OCR: "o", Long: "l"},
	}
	require.NoError(t, SaveCaptions(path, captions))

	loaded, err := LoadCaptions(path)
	require.NoError(t, err)
	assert.Equal(t, captions, loaded)
}

func TestLoadCaptions_MissingFileYieldsEmptyMap(t *testing.T) {
	loaded, err := LoadCaptions(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
