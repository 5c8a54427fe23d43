// Package render rasterizes PDF pages through an external renderer binary.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"docqa/internal/domain"
)

var _ domain.PageRenderer = (*PDFToPPM)(nil)

// PDFToPPM renders pages by shelling out to pdftoppm and renaming its
// output to the {stem}_page{N}.png contract.
type PDFToPPM struct {
	binary string
	dpi    int
}

// NewPDFToPPM creates a renderer using the given binary and DPI.
func NewPDFToPPM(binary string, dpi int) *PDFToPPM {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &PDFToPPM{binary: binary, dpi: dpi}
}

// RenderPages renders every page into outDir and returns the written
// paths in page order.
func (r *PDFToPPM) RenderPages(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	prefix := filepath.Join(outDir, stem+"_pp")

	cmd := exec.CommandContext(ctx, r.binary, "-png", "-r", strconv.Itoa(r.dpi), pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", r.binary, err, strings.TrimSpace(string(out)))
	}

	// pdftoppm writes prefix-N.png with zero padding that varies with the
	// page count, so collect, sort and renumber.
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("glob rendered pages: %w", err)
	}
	sort.Strings(matches)
	paths := make([]string, 0, len(matches))
	for i, m := range matches {
		dst := filepath.Join(outDir, fmt.Sprintf("%s_page%d.png", stem, i+1))
		if err := os.Rename(m, dst); err != nil {
			return nil, fmt.Errorf("rename page render: %w", err)
		}
		paths = append(paths, dst)
	}
	return paths, nil
}
