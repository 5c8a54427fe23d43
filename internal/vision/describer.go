// Package vision produces captions, OCR text and expanded descriptions
// for extracted images.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"docqa/internal/domain"
)

// Describer runs the caption/OCR/expand steps over a directory of images.
// Every step is independently failure-tolerant: a bad image never aborts
// the batch.
type Describer struct {
	captioner                domain.Captioner
	ocr                      domain.OCREngine
	completer                domain.Completer
	skipExpandOnCaptionError bool
	log                      *zap.Logger
}

// NewDescriber wires the visual description stage.
func NewDescriber(captioner domain.Captioner, ocr domain.OCREngine, completer domain.Completer, skipExpandOnCaptionError bool, log *zap.Logger) *Describer {
	return &Describer{
		captioner:                captioner,
		ocr:                      ocr,
		completer:                completer,
		skipExpandOnCaptionError: skipExpandOnCaptionError,
		log:                      log,
	}
}

// Run describes every raster image under folder, keyed by filename, in
// sorted order. A missing folder is created and yields an empty result, a
// valid terminal state.
func (d *Describer) Run(ctx context.Context, folder string) (map[string]domain.ImageDescription, error) {
	results := make(map[string]domain.ImageDescription)

	if _, err := os.Stat(folder); os.IsNotExist(err) {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return nil, fmt.Errorf("create images dir: %w", err)
		}
		d.log.Warn("no images found, created empty folder", zap.String("dir", folder))
		return results, nil
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read images dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		d.log.Warn("no image files found", zap.String("dir", folder))
		return results, nil
	}

	for _, fname := range files {
		path := filepath.Join(folder, fname)
		results[fname] = d.describeOne(ctx, path, fname)
	}
	return results, nil
}

func (d *Describer) describeOne(ctx context.Context, path, fname string) domain.ImageDescription {
	var desc domain.ImageDescription
	captionFailed := false

	short, err := d.captioner.Caption(ctx, path)
	if err != nil {
		short = fmt.Sprintf("(caption error: %v)", err)
		captionFailed = true
		d.log.Warn("captioning failed", zap.String("image", fname), zap.Error(err))
	}
	desc.Short = short

	ocrText, err := d.ocr.Recognize(ctx, path)
	if err != nil {
		d.log.Warn("ocr failed", zap.String("image", fname), zap.Error(err))
		ocrText = ""
	}
	desc.OCR = ocrText

	if captionFailed && d.skipExpandOnCaptionError {
		return desc
	}
	long, err := d.completer.Complete(ctx, expansionPrompt(short, ocrText))
	if err != nil {
		d.log.Warn("expansion failed", zap.String("image", fname), zap.Error(err))
	} else {
		desc.Long = strings.TrimSpace(long)
	}

	d.log.Info("described image",
		zap.String("image", fname),
		zap.String("short", truncate(desc.Short, 80)),
		zap.String("long", truncate(desc.Long, 80)),
	)
	return desc
}

// expansionPrompt combines the short caption and OCR text; the OCR line
// is omitted when no text was found.
func expansionPrompt(short, ocrText string) string {
	var sb strings.Builder
	sb.WriteString("You are an assistant that writes detailed, vivid, factual image descriptions.\n\n")
	sb.WriteString("Short caption: " + short + "\n")
	if ocrText != "" {
		sb.WriteString("Detected text inside image: " + ocrText + "\n")
	}
	sb.WriteString("Write a complete descriptive paragraph (3-6 sentences) that covers: what is in the image,\n" +
		"notable attributes (style, colors, objects), any readable text, and a short inference about the likely\n" +
		"purpose of the image. Be factual, avoid hallucination, but use reasonable general knowledge.\n\nDescription:\n")
	return sb.String()
}

// SaveCaptions persists the description mapping as one JSON object.
func SaveCaptions(path string, captions map[string]domain.ImageDescription) error {
	data, err := json.MarshalIndent(captions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal captions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create captions dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadCaptions reads a previously saved description mapping. A missing
// file yields an empty mapping.
func LoadCaptions(path string) (map[string]domain.ImageDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]domain.ImageDescription{}, nil
		}
		return nil, err
	}
	var captions map[string]domain.ImageDescription
	if err := json.Unmarshal(data, &captions); err != nil {
		return nil, fmt.Errorf("decode captions: %w", err)
	}
	return captions, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
