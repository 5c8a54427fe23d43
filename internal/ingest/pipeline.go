// Package ingest drives the document converter over a batch of PDFs with
// a fixed-size worker pool.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docqa/internal/domain"
)

const maxWorkers = 4

// Pipeline converts every PDF in a directory into its on-disk artifacts:
// plain text, structured export, HTML, per-table markdown, page renders
// and embedded pictures.
type Pipeline struct {
	converter domain.Converter
	renderer  domain.PageRenderer
	outputDir string
	imagesDir string
	log       *zap.Logger
}

// NewPipeline wires the ingestion stage.
func NewPipeline(converter domain.Converter, renderer domain.PageRenderer, outputDir, imagesDir string, log *zap.Logger) *Pipeline {
	return &Pipeline{
		converter: converter,
		renderer:  renderer,
		outputDir: outputDir,
		imagesDir: imagesDir,
		log:       log,
	}
}

// Run processes every *.pdf under inputDir exactly once. Files are
// drained from a shared queue by min(4, files) workers; a failed file is
// logged and skipped, never aborting its siblings. Run returns only after
// every worker has exited, so downstream stages can rely on all artifacts
// being on disk. A directory with zero PDFs is a warning, not an error.
func (p *Pipeline) Run(ctx context.Context, inputDir string) ([]domain.Document, error) {
	log := p.log.With(zap.String("run_id", uuid.NewString()))
	start := time.Now()

	pdfs, err := filepath.Glob(filepath.Join(inputDir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("scan input dir: %w", err)
	}
	sort.Strings(pdfs)
	if len(pdfs) == 0 {
		log.Warn("no pdf files found", zap.String("dir", inputDir))
		return nil, nil
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.MkdirAll(p.imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}

	queue := make(chan string, len(pdfs))
	for _, pdf := range pdfs {
		queue <- pdf
	}
	close(queue)

	workers := maxWorkers
	if len(pdfs) < workers {
		workers = len(pdfs)
	}

	var mu sync.Mutex
	var docs []domain.Document

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for pdf := range queue {
				log.Info("processing", zap.String("pdf", pdf))
				doc, err := p.processOne(ctx, pdf)
				if err != nil {
					log.Error("error processing", zap.String("pdf", pdf), zap.Error(err))
					continue
				}
				log.Info("finished",
					zap.String("pdf", pdf),
					zap.Int("images", len(doc.ImagePaths)+len(doc.PagePaths)),
					zap.Int("tables", len(doc.TablePaths)),
				)
				mu.Lock()
				docs = append(docs, *doc)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("ingestion complete",
		zap.Int("documents", len(docs)),
		zap.Duration("total", time.Since(start)),
	)
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (p *Pipeline) processOne(ctx context.Context, pdfPath string) (*domain.Document, error) {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	doc := &domain.Document{ID: stem, Path: pdfPath}

	conv, err := p.converter.Convert(ctx, pdfPath, domain.ConvertOptions{
		GenerateImages: true,
		GenerateTables: true,
	})
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	doc.Text = conv.Text

	pages, err := p.renderer.RenderPages(ctx, pdfPath, p.imagesDir)
	if err != nil {
		return nil, fmt.Errorf("render pages: %w", err)
	}
	doc.PagePaths = pages

	picCounter := 1
	for _, pic := range conv.Pictures {
		if pic.Err != nil || len(pic.Data) == 0 {
			p.log.Warn("skipping embedded picture",
				zap.String("pdf", pdfPath), zap.Int("picture", picCounter), zap.Error(pic.Err))
			continue
		}
		out := filepath.Join(p.imagesDir, fmt.Sprintf("%s_pic_%d.png", stem, picCounter))
		if err := os.WriteFile(out, pic.Data, 0o644); err != nil {
			p.log.Warn("skipping embedded picture",
				zap.String("pdf", pdfPath), zap.Int("picture", picCounter), zap.Error(err))
			continue
		}
		doc.ImagePaths = append(doc.ImagePaths, out)
		picCounter++
	}

	for idx, tbl := range conv.Tables {
		if tbl.Err != nil {
			p.log.Warn("skipping table",
				zap.String("pdf", pdfPath), zap.Int("table", idx+1), zap.Error(tbl.Err))
			continue
		}
		out := filepath.Join(p.outputDir, fmt.Sprintf("%s_table%d.md", stem, idx+1))
		if err := os.WriteFile(out, []byte(tbl.Markdown), 0o644); err != nil {
			p.log.Warn("skipping table",
				zap.String("pdf", pdfPath), zap.Int("table", idx+1), zap.Error(err))
			continue
		}
		doc.TablePaths = append(doc.TablePaths, out)
	}

	docJSON, err := json.MarshalIndent(conv.Doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal doc export: %w", err)
	}
	artifacts := map[string][]byte{
		stem + ".txt":      []byte(conv.Text),
		stem + ".yaml":     docJSON, // JSON content, legacy extension
		stem + ".html":     []byte(conv.HTML),
		stem + "_doc.json": docJSON,
	}
	for name, data := range artifacts {
		if err := os.WriteFile(filepath.Join(p.outputDir, name), data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return doc, nil
}
