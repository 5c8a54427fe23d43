// Package ocr wraps an external OCR binary behind the OCREngine interface.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"docqa/internal/domain"
)

var _ domain.OCREngine = (*Tesseract)(nil)

// Tesseract shells out to the tesseract binary, reading the recognized
// text from stdout.
type Tesseract struct {
	binary string
}

// NewTesseract creates an OCR engine using the given binary.
func NewTesseract(binary string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{binary: binary}
}

// Recognize returns the text found in the image, empty when none. An
// image with no recognizable text is not an error.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, imagePath, "stdout")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", t.binary, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
