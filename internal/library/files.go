package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// SaveUpload writes an uploaded file into the case's DataLib directory and
// returns the number of bytes written.
func (l *Library) SaveUpload(caseName, filename string, r io.Reader) (int64, error) {
	if err := safeName(caseName); err != nil {
		return 0, err
	}
	if err := safeName(filename); err != nil {
		return 0, err
	}
	dir := l.dataLib(caseName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create DataLib dir for case %s: %w", caseName, err)
	}

	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", filename, err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", filename, err)
	}
	return n, nil
}

// SaveText saves user-provided text content as a .txt file, appending the
// extension when it is missing. Returns the final filename and size.
func (l *Library) SaveText(caseName, filename, content string) (string, int64, error) {
	if !strings.HasSuffix(filename, ".txt") {
		filename += ".txt"
	}
	n, err := l.SaveUpload(caseName, filename, strings.NewReader(content))
	return filename, n, err
}

// SaveNote saves a timestamped note into the case's DataLib directory.
// Returns the generated filename, the timestamp used and the size written.
func (l *Library) SaveNote(caseName, content string) (string, string, int64, error) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("note_%s.txt", timestamp)
	n, err := l.SaveUpload(caseName, filename, strings.NewReader(content))
	return filename, timestamp, n, err
}

var unsafeTitleChars = regexp.MustCompile(`[^\w\s-]`)
var titleSeparators = regexp.MustCompile(`[\s_-]+`)

// SaveScraped stores webpage content captured by the scraper as a text file
// named after the page title.
func (l *Library) SaveScraped(caseName, title, url, content string) (string, int64, error) {
	scraped := fmt.Sprintf("Title: %s\nURL: %s\nScraped on: %s\n\nContent:\n%s\n",
		title, url, time.Now().Format("2006-01-02 15:04:05"), content)

	safeTitle := unsafeTitleChars.ReplaceAllString(title, "")
	safeTitle = titleSeparators.ReplaceAllString(safeTitle, "_")
	if len(safeTitle) > 50 {
		safeTitle = safeTitle[:50]
	}
	if safeTitle == "" {
		safeTitle = "page"
	}

	filename := fmt.Sprintf("url_%s_%s.txt", safeTitle, time.Now().Format("20060102_150405"))
	n, err := l.SaveUpload(caseName, filename, strings.NewReader(scraped))
	return filename, n, err
}

// SourcePath resolves a source file, checking DataLib first and falling back
// to ProjectLib as the original terminal does for case-definition sources.
func (l *Library) SourcePath(caseName, filename string) (string, error) {
	if err := safeName(caseName); err != nil {
		return "", notFound("case %s", caseName)
	}
	if err := safeName(filename); err != nil {
		return "", notFound("source file %s", filename)
	}

	caseDir := l.dataLib(caseName)
	if _, err := os.Stat(caseDir); os.IsNotExist(err) {
		caseDir = filepath.Join(l.projectLib(), caseName)
		if _, err := os.Stat(caseDir); os.IsNotExist(err) {
			return "", notFound("case %s", caseName)
		}
	}

	path := filepath.Join(caseDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", notFound("source file %s in case %s", filename, caseName)
	}
	return path, nil
}

// DataFilePath resolves a file inside the case's DataLib directory.
func (l *Library) DataFilePath(caseName, filename string) (string, error) {
	if err := safeName(caseName); err != nil {
		return "", notFound("case %s", caseName)
	}
	if err := safeName(filename); err != nil {
		return "", notFound("file %s", filename)
	}
	path := filepath.Join(l.dataLib(caseName), filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", notFound("file %s in case %s", filename, caseName)
	}
	return path, nil
}

// FileExcerpt is a truncated text file used to ground chat answers.
type FileExcerpt struct {
	Filename string
	Content  string
}

// TextExcerpts reads up to maxFiles .txt files from the case's DataLib,
// truncated to maxChars each. Unreadable files are skipped.
func (l *Library) TextExcerpts(caseName string, maxFiles, maxChars int) ([]FileExcerpt, error) {
	if err := safeName(caseName); err != nil {
		return nil, notFound("case %s", caseName)
	}
	entries, err := os.ReadDir(l.dataLib(caseName))
	if os.IsNotExist(err) {
		return nil, notFound("case %s", caseName)
	}
	if err != nil {
		return nil, fmt.Errorf("read case %s files: %w", caseName, err)
	}

	var excerpts []FileExcerpt
	for _, entry := range entries {
		if len(excerpts) >= maxFiles {
			break
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dataLib(caseName), entry.Name()))
		if err != nil {
			l.logger.Warn("Skipping unreadable text file", "case", caseName, "filename", entry.Name(), "error", err)
			continue
		}
		content := string(data)
		if len(content) > maxChars {
			content = content[:maxChars]
		}
		excerpts = append(excerpts, FileExcerpt{Filename: entry.Name(), Content: content})
	}
	return excerpts, nil
}

// AnalysisFilenames lists DataLib files with extensions the chat agent
// considers source material.
func (l *Library) AnalysisFilenames(caseName string) ([]string, error) {
	files, err := l.CaseFiles(caseName)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range files {
		switch f.FileType {
		case "txt", "docx", "pdf", "csv":
			names = append(names, f.Filename)
		}
	}
	return names, nil
}
