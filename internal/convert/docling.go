// Package convert provides document converter adapters behind the
// domain.Converter interface.
package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"docqa/internal/domain"
)

var _ domain.Converter = (*DoclingClient)(nil)

// DoclingConfig configures the HTTP client to a docling-serve endpoint.
type DoclingConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DoclingClient drives a docling-serve conversion endpoint. The server
// performs the structural conversion; this client only moves bytes and
// reshapes the response.
type DoclingClient struct {
	baseURL string
	client  *http.Client
}

// NewDoclingClient creates a converter client using the provided configuration.
func NewDoclingClient(cfg DoclingConfig) *DoclingClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5001"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}
	return &DoclingClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// convertResponse is the wire shape of one conversion result.
type convertResponse struct {
	Text     string          `json:"text"`
	HTML     string          `json:"html"`
	Doc      json.RawMessage `json:"doc"`
	Pictures []struct {
		PNG string `json:"png"` // base64
	} `json:"pictures"`
	Tables []struct {
		Markdown string `json:"markdown"`
		Error    string `json:"error,omitempty"`
	} `json:"tables"`
}

// Convert uploads the PDF and returns its structured export. Per-picture
// decode failures and per-table export failures are carried on the items
// themselves so the caller can skip them individually.
func (c *DoclingClient) Convert(ctx context.Context, pdfPath string, opts domain.ConvertOptions) (*domain.Conversion, error) {
	file, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(pdfPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy pdf: %w", err)
	}
	_ = mw.WriteField("generate_images", boolField(opts.GenerateImages))
	_ = mw.WriteField("generate_tables", boolField(opts.GenerateTables))
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/convert", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("converter error (status %d): %s", resp.StatusCode, string(body))
	}

	var out convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	conv := &domain.Conversion{
		Text: out.Text,
		HTML: out.HTML,
		Doc:  out.Doc,
	}
	for i, p := range out.Pictures {
		data, err := base64.StdEncoding.DecodeString(p.PNG)
		if err != nil {
			conv.Pictures = append(conv.Pictures, domain.Picture{Err: fmt.Errorf("picture %d: %w", i+1, err)})
			continue
		}
		conv.Pictures = append(conv.Pictures, domain.Picture{Data: data})
	}
	for i, t := range out.Tables {
		if t.Error != "" {
			conv.Tables = append(conv.Tables, domain.Table{Err: fmt.Errorf("table %d: %s", i+1, t.Error)})
			continue
		}
		conv.Tables = append(conv.Tables, domain.Table{Markdown: t.Markdown})
	}
	return conv, nil
}

func boolField(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
