package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docqa/internal/answer"
	"docqa/internal/config"
	"docqa/internal/convert"
	"docqa/internal/domain"
	"docqa/internal/embedding/openai"
	"docqa/internal/index"
	"docqa/internal/ingest"
	"docqa/internal/llm/ollama"
	"docqa/internal/ocr"
	"docqa/internal/render"
	"docqa/internal/retriever"
	"docqa/internal/tables"
	"docqa/internal/tui"
	"docqa/internal/vectorstore"
	"docqa/internal/vectorstore/qdrant"
	"docqa/internal/vision"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var cfg *config.AppConfig
	var log *zap.Logger

	rootCmd := &cobra.Command{
		Use:   "docqa",
		Short: "PDF ingestion, multi-modal indexing and question answering",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgPath == "" {
				cfg, _, err = config.LoadDefault()
			} else {
				cfg, err = config.Load(cfgPath)
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err = newLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (optional)")

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Convert every PDF in the input directory into its artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline := ingest.NewPipeline(
				buildConverter(cfg),
				render.NewPDFToPPM(cfg.Renderer.Binary, cfg.Renderer.DPI),
				cfg.Paths.OutputDir,
				cfg.Paths.ImagesDir,
				log,
			)
			_, err := pipeline.Run(cmd.Context(), cfg.Paths.InputDir)
			return err
		},
	}

	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "Canonicalize table exports into row-record JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := tables.NewCanonicalizer(log).Run(cfg.Paths.TablesDir, cfg.Paths.TablesJSON)
			return err
		},
	}

	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Caption, OCR and expand every extracted image",
		RunE: func(cmd *cobra.Command, args []string) error {
			describer := vision.NewDescriber(
				ollama.NewCaptionClient(ollama.Config{
					BaseURL: cfg.LLM.BaseURL,
					Model:   cfg.Vision.CaptionModel,
					Timeout: time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
				}),
				ocr.NewTesseract(cfg.Vision.TesseractBinary),
				buildCompleter(cfg),
				cfg.Vision.SkipExpandOnCaptionError,
				log,
			)
			captions, err := describer.Run(cmd.Context(), cfg.Paths.ImagesDir)
			if err != nil {
				return err
			}
			if err := vision.SaveCaptions(cfg.Paths.CaptionsFile, captions); err != nil {
				return err
			}
			log.Info("captions saved", zap.Int("images", len(captions)), zap.String("file", cfg.Paths.CaptionsFile))
			return nil
		},
	}

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Build the vector index bundle from text, captions and tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cfg, log)
		},
	}

	var question string
	var topK int
	var useTUI bool
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Answer a question from the built index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), cfg, log, question, topK, useTUI)
		},
	}
	queryCmd.Flags().StringVarP(&question, "question", "q", "", "question to answer (one-shot mode)")
	queryCmd.Flags().IntVarP(&topK, "topk", "k", 0, "number of retrieved units (default from config)")
	queryCmd.Flags().BoolVar(&useTUI, "tui", false, "start the interactive screen")

	rootCmd.AddCommand(ingestCmd, tablesCmd, describeCmd, indexCmd, queryCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runIndex(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) error {
	texts, err := collectTexts(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	captions, err := vision.LoadCaptions(cfg.Paths.CaptionsFile)
	if err != nil {
		return err
	}
	tableFiles, err := collectTables(cfg.Paths.TablesJSON)
	if err != nil {
		return err
	}

	chunker, err := index.NewChunker(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		return err
	}
	store := buildIndexStore(cfg)
	builder := index.NewBuilder(chunker, buildEmbedder(cfg), store, log)
	bundle, err := builder.Build(ctx, texts, captions, tableFiles)
	if err != nil {
		return err
	}
	if cfg.Index.Type != "qdrant" {
		if err := bundle.Save(cfg.Paths.BundleFile); err != nil {
			return err
		}
		log.Info("bundle saved", zap.String("file", cfg.Paths.BundleFile))
	}
	return nil
}

func runQuery(ctx context.Context, cfg *config.AppConfig, log *zap.Logger, question string, topK int, useTUI bool) error {
	var store domain.VectorIndex
	if cfg.Index.Type == "qdrant" {
		store = buildIndexStore(cfg)
	} else {
		bundle, err := index.LoadBundle(cfg.Paths.BundleFile)
		if err != nil {
			return err
		}
		flat := vectorstore.NewFlat()
		if err := flat.Restore(bundle.Units, bundle.Vectors, bundle.Dimension); err != nil {
			return err
		}
		store = flat
	}

	if topK <= 0 {
		topK = cfg.Retriever.TopK
	}
	ret := retriever.New(buildEmbedder(cfg), store, topK)
	composer := answer.NewComposer(ret, buildCompleter(cfg))

	if useTUI {
		_, err := tea.NewProgram(tui.New(composer)).Run()
		return err
	}
	if question == "" {
		return fmt.Errorf("either --question or --tui is required")
	}
	out, _, err := composer.Answer(ctx, question)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func collectTexts(outputDir string) ([]index.DocumentText, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scan text exports: %w", err)
	}
	sort.Strings(matches)
	texts := make([]index.DocumentText, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", m, err)
		}
		stem := strings.TrimSuffix(filepath.Base(m), ".txt")
		texts = append(texts, index.DocumentText{ID: stem, Text: string(data)})
	}
	return texts, nil
}

func collectTables(tablesJSONDir string) ([]index.TableFile, error) {
	names, err := tables.ListJSON(tablesJSONDir)
	if err != nil {
		return nil, fmt.Errorf("scan table records: %w", err)
	}
	files := make([]index.TableFile, 0, len(names))
	for _, name := range names {
		rows, err := tables.ReadRows(filepath.Join(tablesJSONDir, name))
		if err != nil {
			return nil, err
		}
		files = append(files, index.TableFile{Name: name, Rows: rows})
	}
	return files, nil
}

func buildConverter(cfg *config.AppConfig) domain.Converter {
	if cfg.Converter.Type == "pdftext" {
		return convert.NewPDFTextConverter()
	}
	return convert.NewDoclingClient(convert.DoclingConfig{
		BaseURL: cfg.Converter.BaseURL,
		Timeout: time.Duration(cfg.Converter.TimeoutSecs) * time.Second,
	})
}

func buildEmbedder(cfg *config.AppConfig) domain.Embedder {
	return openai.NewClient(openai.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
}

func buildCompleter(cfg *config.AppConfig) domain.Completer {
	return ollama.NewClient(ollama.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
}

func buildIndexStore(cfg *config.AppConfig) domain.VectorIndex {
	if cfg.Index.Type == "qdrant" && cfg.Index.Qdrant != nil {
		return qdrant.NewStore(qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		})
	}
	return vectorstore.NewFlat()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
