package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
)

// NewURLSet wraps entries in the sitemap envelope
func NewURLSet(entries []Entry) *URLSet {
	return &URLSet{
		XMLNS: Namespace,
		URLs:  entries,
	}
}

// Marshal renders the document with the XML header, two-space indentation
// and a trailing newline
func (s *URLSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush sitemap: %w", err)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ReadFile decodes a sitemap document from disk
func ReadFile(path string) (*URLSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sitemap: %w", err)
	}
	defer file.Close()

	var set URLSet
	if err := xml.NewDecoder(file).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap %s: %w", path, err)
	}
	return &set, nil
}
