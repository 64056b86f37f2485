package approach

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Citation is the display/lookup metadata for one referenced source.
type Citation struct {
	// Citation is the URL of the cited chunk.
	Citation string `json:"citation"`
	// SourcePath is the path of the original document.
	SourcePath string `json:"source_path"`
	// PageNumber is the page the chunk was taken from, if known.
	PageNumber string `json:"page_number"`
}

// CitationLookup maps citation keys to metadata and remembers insertion order.
// Reference markers are numbered in that order, so it must survive JSON round trips.
// The zero value is empty and ready to use.
type CitationLookup struct {
	keys    []string
	entries map[string]Citation
}

// NewCitationLookup returns an empty lookup.
func NewCitationLookup() *CitationLookup {
	return &CitationLookup{entries: make(map[string]Citation)}
}

// Set stores c under key. A new key is appended; an existing key keeps its position.
func (l *CitationLookup) Set(key string, c Citation) {
	if l.entries == nil {
		l.entries = make(map[string]Citation)
	}
	if _, ok := l.entries[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.entries[key] = c
}

// Get returns the citation stored under key.
func (l *CitationLookup) Get(key string) (Citation, bool) {
	if l == nil {
		return Citation{}, false
	}
	c, ok := l.entries[key]
	return c, ok
}

// Len returns the number of citations. A nil lookup is empty.
func (l *CitationLookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.keys)
}

// Keys returns the keys in insertion order.
func (l *CitationLookup) Keys() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (l *CitationLookup) Each(fn func(key string, c Citation)) {
	if l == nil {
		return
	}
	for _, k := range l.keys {
		fn(k, l.entries[k])
	}
}

// MarshalJSON encodes the lookup as a JSON object in insertion order.
func (l *CitationLookup) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range l.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(l.entries[k])
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

// UnmarshalJSON decodes a JSON object keeping the document order of its keys.
func (l *CitationLookup) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = CitationLookup{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("citation lookup must be a JSON object")
	}

	out := NewCitationLookup()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("citation lookup key must be a string")
		}
		var c Citation
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("citation %q: %w", key, err)
		}
		out.Set(key, c)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = *out
	return nil
}
