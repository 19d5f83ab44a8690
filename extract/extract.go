// Package extract turns source files into structured documents: paragraphs
// and tables with the container format stripped away. It is the input
// collaborator of the converter and the only place that parses file formats.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/docshot/document"
)

// Format identifies a supported source container.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
)

// ErrUnsupportedFormat is returned for files whose format cannot be detected.
var ErrUnsupportedFormat = errors.New("extract: unsupported format")

// DetectFormat picks a format from the file extension, falling back to
// sniffing the leading bytes when the extension is unknown.
func DetectFormat(name string, head []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return FormatDOCX, nil
	case ".xml":
		return FormatXML, nil
	case ".html", ".htm":
		return FormatHTML, nil
	}
	trimmed := bytes.TrimSpace(head)
	switch {
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		return FormatDOCX, nil
	case hasPrefixFold(trimmed, "<!doctype html"), hasPrefixFold(trimmed, "<html"):
		return FormatHTML, nil
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatXML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

func hasPrefixFold(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && strings.EqualFold(string(b[:len(prefix)]), prefix)
}

// File reads path and extracts it according to its detected format.
func File(path string) (document.Document, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Document{}, "", fmt.Errorf("reading %s: %w", path, err)
	}
	format, err := DetectFormat(path, data[:min(len(data), 512)])
	if err != nil {
		return document.Document{}, "", err
	}
	doc, err := Bytes(data, format)
	if err != nil {
		return document.Document{}, format, fmt.Errorf("extracting %s: %w", path, err)
	}
	doc.Name = filepath.Base(path)
	return doc, format, nil
}

// Bytes extracts data in the given format.
func Bytes(data []byte, format Format) (document.Document, error) {
	switch format {
	case FormatDOCX:
		return DOCX(bytes.NewReader(data), int64(len(data)))
	case FormatXML:
		return XML(bytes.NewReader(data))
	case FormatHTML:
		return HTML(bytes.NewReader(data), "")
	default:
		return document.Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Reader extracts from r, buffering it fully when the format needs random access.
func Reader(r io.Reader, format Format) (document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return document.Document{}, fmt.Errorf("reading input: %w", err)
	}
	return Bytes(data, format)
}
