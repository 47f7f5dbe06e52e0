// Package parser extracts, deduplicates and normalizes chat messages from
// platform-specific export files (HTML and JSON).
package parser

import (
	"path/filepath"
	"strings"
)

// DocumentKind classifies an input by filename extension.
type DocumentKind int

// Document kinds accepted by the pipeline.
const (
	KindUnsupported DocumentKind = iota
	KindJSON
	KindHTML
)

// Document is one already-read input: raw bytes plus the filename the
// pipeline uses for extension sniffing. It is never mutated.
type Document struct {
	Name string
	Data []byte
}

// Kind returns the document kind derived from the filename suffix.
func (d Document) Kind() DocumentKind {
	switch strings.ToLower(filepath.Ext(d.Name)) {
	case ".json":
		return KindJSON
	case ".html", ".htm":
		return KindHTML
	default:
		return KindUnsupported
	}
}
