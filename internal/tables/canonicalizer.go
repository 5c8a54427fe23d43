// Package tables normalizes raw tabular exports into uniform row-record
// collections.
package tables

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Canonicalizer turns CSV exports into JSON row-record files.
type Canonicalizer struct {
	log *zap.Logger
}

// NewCanonicalizer creates the table canonicalization stage.
func NewCanonicalizer(log *zap.Logger) *Canonicalizer {
	return &Canonicalizer{log: log}
}

// Run parses every .csv file under srcDir and writes one JSON array of
// row objects per source file into outDir, keyed by the source name with
// a .json extension. Non-CSV files are ignored; a file that fails to
// parse is logged and skipped. The returned map holds the parsed rows
// keyed by output filename.
func (c *Canonicalizer) Run(srcDir, outDir string) (map[string][]Row, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Warn("tables directory missing", zap.String("dir", srcDir))
			return map[string][]Row{}, nil
		}
		return nil, fmt.Errorf("read tables dir: %w", err)
	}

	out := make(map[string][]Row)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		rows, err := ParseCSV(filepath.Join(srcDir, name))
		if err != nil {
			c.log.Warn("skipping table export", zap.String("file", name), zap.Error(err))
			continue
		}
		if rows == nil {
			rows = []Row{}
		}
		jsonName := strings.TrimSuffix(name, filepath.Ext(name)) + ".json"
		data, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", jsonName, err)
		}
		if err := os.WriteFile(filepath.Join(outDir, jsonName), data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", jsonName, err)
		}
		out[jsonName] = rows
	}
	c.log.Info("tables canonicalized", zap.Int("files", len(out)))
	return out, nil
}

// ParseCSV reads one CSV export into ordered rows. The file is decoded as
// UTF-8 first; invalid byte sequences trigger a Latin-1 reinterpretation,
// matching the tolerant two-encoding contract. Short records are padded
// with empty strings so every row carries every column.
func ParseCSV(path string) ([]Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		raw, err = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("latin-1 decode: %w", err)
		}
	}

	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := Row{Columns: append([]string(nil), header...), Values: make(map[string]string, len(header))}
		for i, col := range header {
			if i < len(record) {
				row.Values[col] = record[i]
			} else {
				row.Values[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadRows loads one canonicalized row-record JSON file.
func ReadRows(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// ListJSON returns the canonicalized row files under dir in sorted order.
func ListJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
