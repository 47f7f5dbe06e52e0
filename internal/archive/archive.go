// Package archive expands uploaded ZIP archives into the documents the
// parsing pipeline consumes.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/chatlens/chatlens/internal/parser"
)

// ErrNoDocuments is returned when an archive holds no supported members.
// It is a validation failure of the whole upload, not a per-member skip.
var ErrNoDocuments = errors.New("no valid content files (.json, .html) found in the ZIP archive")

var zipSignatures = [][]byte{
	{'P', 'K', 0x03, 0x04},
	{'P', 'K', 0x05, 0x06}, // empty archive
}

// IsZip reports whether the buffer starts with a ZIP signature.
func IsZip(data []byte) bool {
	for _, sig := range zipSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// Documents reads the supported members of a ZIP archive: regular files
// with a .json/.html/.htm suffix, excluding macOS resource directories,
// dotfiles and empty members. Member order is preserved.
func Documents(data []byte) ([]parser.Document, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var docs []parser.Document
	for _, f := range r.File {
		if !validMember(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil || len(buf) == 0 {
			continue
		}
		docs = append(docs, parser.Document{Name: f.Name, Data: buf})
	}

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// Expand returns the documents of one upload: the archive members for ZIP
// input, otherwise the file itself as a single document.
func Expand(filename string, data []byte) ([]parser.Document, error) {
	if IsZip(data) {
		return Documents(data)
	}
	return []parser.Document{{Name: filename, Data: data}}, nil
}

func validMember(name string) bool {
	if strings.HasSuffix(name, "/") || strings.HasPrefix(name, "__MACOSX/") {
		return false
	}
	base := path.Base(name)
	if base == "." || strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".html", ".htm":
		return true
	default:
		return false
	}
}
