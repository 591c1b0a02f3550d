// Package extract reads case source files into text the agents can analyze.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// UnsupportedTypeError reports a file type the terminal cannot read; API
// handlers map it to a client error.
type UnsupportedTypeError struct {
	Extension string
	Hint      string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("unsupported file type: .%s. %s", e.Extension, e.Hint)
	}
	return fmt.Sprintf("unsupported file type: .%s", e.Extension)
}

// UnreadableError reports source content that cannot be decoded for
// analysis; API handlers map it to a client error.
type UnreadableError struct {
	Filename string
	Detail   string
}

func (e *UnreadableError) Error() string {
	return e.Detail
}

var analysisTextTypes = map[string]bool{
	"txt": true, "csv": true, "md": true, "py": true,
	"js": true, "html": true, "xml": true,
}

var sourceTextTypes = map[string]bool{
	"txt": true, "csv": true, "json": true, "py": true, "js": true,
	"html": true, "css": true, "md": true, "rst": true,
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// ForAnalysis reads a file and renders it as prompt-ready text. JSON files
// are pretty-printed with a small header so the model sees the dataset
// shape; plain text formats are passed through.
func ForAnalysis(path, filename string) (string, error) {
	ext := extension(filename)

	switch {
	case ext == "json":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filename, err)
		}
		var parsed any
		if err := json.Unmarshal(data, &parsed); err != nil {
			return "", &UnreadableError{Filename: filename, Detail: "Invalid JSON file format"}
		}
		pretty, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return "", fmt.Errorf("format %s: %w", filename, err)
		}
		return fmt.Sprintf("JSON Dataset: %s\n\nContent Summary:\n%s", filename, pretty), nil

	case analysisTextTypes[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filename, err)
		}
		if !utf8.Valid(data) {
			return "", &UnreadableError{Filename: filename, Detail: "Unable to read file content - file may be binary or corrupted"}
		}
		return string(data), nil

	case ext == "pdf" || ext == "docx" || ext == "doc":
		return "", &UnsupportedTypeError{Extension: ext, Hint: "Please convert to .txt format."}

	default:
		return "", &UnsupportedTypeError{
			Extension: ext,
			Hint:      "Supported types: txt, csv, json, md, py, js, html, xml",
		}
	}
}

// Document is a fully-read source file returned to the frontend.
type Document struct {
	Filename   string
	Content    string
	FileType   string
	Size       int64
	ModifiedAt float64
}

// Source reads a source file in full for display. Text formats are read
// directly; unknown extensions are attempted as text; document formats
// without a text conversion are rejected. Non-UTF-8 content falls back to
// a byte-preserving Latin-1 read so text-type sources always open.
func Source(path, filename string) (Document, error) {
	ext := extension(filename)

	if ext == "pdf" || ext == "docx" || ext == "doc" {
		return Document{}, &UnsupportedTypeError{Extension: ext, Hint: "Please convert to .txt format."}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("stat %s: %w", filename, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", filename, err)
	}
	fileType := "unknown_text"
	if sourceTextTypes[ext] {
		fileType = "text_file"
	}
	return Document{
		Filename:   filename,
		Content:    decodeText(data),
		FileType:   fileType,
		Size:       info.Size(),
		ModifiedAt: float64(info.ModTime().Unix()),
	}, nil
}

func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
