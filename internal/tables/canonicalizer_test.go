package tables

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestParseCSV_MissingCellsBecomeEmptyStrings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "t.csv", []byte("a,b\n1\n,2\n"))

	rows, err := ParseCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"a", "b"}, rows[0].Columns)
	assert.Equal(t, "1", rows[0].Get("a"))
	assert.Equal(t, "", rows[0].Get("b"))
	assert.Equal(t, "", rows[1].Get("a"))
	assert.Equal(t, "2", rows[1].Get("b"))
}

func TestParseCSV_Latin1Fallback(t *testing.T) {
	dir := t.TempDir()
	// "café" with a Latin-1 encoded é (0xE9), invalid as UTF-8
	path := writeFile(t, dir, "t.csv", []byte{'n', 'a', 'm', 'e', '\n', 'c', 'a', 'f', 0xE9, '\n'})

	rows, err := ParseCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "café", rows[0].Get("name"))
}

func TestCanonicalizer_Idempotent(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, srcDir, "export.csv", []byte("a,b\n1,\n,2\n"))
	c := NewCanonicalizer(zap.NewNop())

	outDir1 := t.TempDir()
	_, err := c.Run(srcDir, outDir1)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(outDir1, "export.json"))
	require.NoError(t, err)

	outDir2 := t.TempDir()
	_, err = c.Run(srcDir, outDir2)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(outDir2, "export.json"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.JSONEq(t, `[{"a":"1","b":""},{"a":"","b":"2"}]`, string(first))
}

func TestCanonicalizer_IgnoresNonCSV(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, srcDir, "notes.md", []byte("| a | b |\n"))
	writeFile(t, srcDir, "export.csv", []byte("a\n1\n"))

	out, err := NewCanonicalizer(zap.NewNop()).Run(srcDir, t.TempDir())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, out, "export.json")
}

func TestCanonicalizer_MissingSourceDir(t *testing.T) {
	out, err := NewCanonicalizer(zap.NewNop()).Run(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRow_JSONRoundTripPreservesOrder(t *testing.T) {
	row := Row{
		Columns: []string{"z", "a", "m"},
		Values:  map[string]string{"z": "1", "a": "", "m": "3"},
	}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"","m":"3"}`, string(data))

	var back Row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, row.Columns, back.Columns)
	assert.Equal(t, row.Values, back.Values)
}

func TestRow_UnmarshalCoercesScalars(t *testing.T) {
	var row Row
	require.NoError(t, json.Unmarshal([]byte(`{"n":42,"f":1.5,"b":true,"x":null}`), &row))
	assert.Equal(t, []string{"n", "f", "b", "x"}, row.Columns)
	assert.Equal(t, "42", row.Get("n"))
	assert.Equal(t, "1.5", row.Get("f"))
	assert.Equal(t, "true", row.Get("b"))
	assert.Equal(t, "", row.Get("x"))
}
