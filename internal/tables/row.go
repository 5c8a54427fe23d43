package tables

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one canonicalized table record: column name to cell value, with
// column order preserved. Missing cells are stored as empty strings, never
// dropped. Order preservation matters twice: canonicalization must be
// byte-idempotent, and the index builder joins cell values in stored order.
type Row struct {
	Columns []string
	Values  map[string]string
}

// Get returns the value for a column, empty string when absent.
func (r Row) Get(column string) string {
	return r.Values[column]
}

// MarshalJSON emits the row as a JSON object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order it appears in.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("table row: expected object, got %v", tok)
	}
	r.Columns = nil
	r.Values = make(map[string]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("table row: non-string key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		if _, nested := valTok.(json.Delim); nested {
			return fmt.Errorf("table row: nested value for column %q", key)
		}
		r.Columns = append(r.Columns, key)
		r.Values[key] = stringify(valTok)
	}
	_, err = dec.Token() // closing brace
	return err
}

// stringify coerces any JSON scalar to its string form; null becomes the
// empty string rather than a null marker.
func stringify(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}
