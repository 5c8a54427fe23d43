package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PathsConfig holds the on-disk layout shared by the batch stages.
type PathsConfig struct {
	InputDir     string `yaml:"input_dir"`
	OutputDir    string `yaml:"output_dir"`
	ImagesDir    string `yaml:"images_dir"`
	TablesDir    string `yaml:"tables_dir"`
	TablesJSON   string `yaml:"tables_json_dir"`
	CaptionsFile string `yaml:"captions_file"`
	BundleFile   string `yaml:"bundle_file"`
}

// ConverterConfig selects and configures the document converter.
type ConverterConfig struct {
	Type        string `yaml:"type"` // docling | pdftext
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RendererConfig configures the external page renderer.
type RendererConfig struct {
	Binary string `yaml:"binary"`
	DPI    int    `yaml:"dpi"`
}

// VisionConfig configures captioning and OCR for extracted images.
// SkipExpandOnCaptionError suppresses the description expansion for images
// whose captioning failed; by default the expansion still runs with the
// placeholder caption.
type VisionConfig struct {
	CaptionModel             string `yaml:"caption_model"`
	TesseractBinary          string `yaml:"tesseract_binary"`
	SkipExpandOnCaptionError bool   `yaml:"skip_expand_on_caption_error"`
}

// EmbedderConfig configures the OpenAI-compatible embeddings client.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig configures the text-completion service.
type LLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChunkerConfig configures the token-window chunker.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the vector index implementation.
type IndexConfig struct {
	Type   string        `yaml:"type"` // flat | qdrant
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// RetrieverConfig configures query-time retrieval.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LogLevel  string          `yaml:"log_level"`
	Paths     PathsConfig     `yaml:"paths"`
	Converter ConverterConfig `yaml:"converter"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Vision    VisionConfig    `yaml:"vision"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	LLM       LLMConfig       `yaml:"llm"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Index     IndexConfig     `yaml:"index"`
	Retriever RetrieverConfig `yaml:"retriever"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Paths.InputDir == "" {
		cfg.Paths.InputDir = "data"
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = "outputs"
	}
	if cfg.Paths.ImagesDir == "" {
		cfg.Paths.ImagesDir = filepath.Join(cfg.Paths.OutputDir, "extracted_images")
	}
	if cfg.Paths.TablesDir == "" {
		cfg.Paths.TablesDir = filepath.Join(cfg.Paths.OutputDir, "extracted_tables")
	}
	if cfg.Paths.TablesJSON == "" {
		cfg.Paths.TablesJSON = filepath.Join(cfg.Paths.OutputDir, "tables_json")
	}
	if cfg.Paths.CaptionsFile == "" {
		cfg.Paths.CaptionsFile = filepath.Join(cfg.Paths.OutputDir, "image_captions.json")
	}
	if cfg.Paths.BundleFile == "" {
		cfg.Paths.BundleFile = filepath.Join(cfg.Paths.OutputDir, "index_bundle.gob")
	}
	if cfg.Converter.Type == "" {
		cfg.Converter.Type = "docling"
	}
	if cfg.Converter.BaseURL == "" {
		cfg.Converter.BaseURL = "http://localhost:5001"
	}
	if cfg.Converter.TimeoutSecs == 0 {
		cfg.Converter.TimeoutSecs = 300
	}
	if cfg.Renderer.Binary == "" {
		cfg.Renderer.Binary = "pdftoppm"
	}
	if cfg.Renderer.DPI == 0 {
		cfg.Renderer.DPI = 150
	}
	if cfg.Vision.CaptionModel == "" {
		cfg.Vision.CaptionModel = "llava"
	}
	if cfg.Vision.TesseractBinary == "" {
		cfg.Vision.TesseractBinary = "tesseract"
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "EMBEDDER_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "all-minilm"
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 120
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 120
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 400
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 80
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "flat"
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 6
	}
}
