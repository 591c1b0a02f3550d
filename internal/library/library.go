// Package library manages the on-disk research libraries: ProjectLib holds
// case definitions, DataLib holds source material per case, and QueryLib
// holds saved dashboards.
package library

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Library struct {
	root   string
	logger *slog.Logger
}

func New(root string, logger *slog.Logger) *Library {
	return &Library{root: root, logger: logger}
}

// ErrNotFound marks missing cases, files and dashboards so handlers can map
// them to 404.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return e.What + " not found"
}

func notFound(format string, args ...any) error {
	return &NotFoundError{What: fmt.Sprintf(format, args...)}
}

func (l *Library) projectLib() string {
	return filepath.Join(l.root, "ProjectLib")
}

func (l *Library) dataLib(caseName string) string {
	return filepath.Join(l.root, "DataLib", caseName)
}

func (l *Library) projectFile(caseName string) string {
	return filepath.Join(l.projectLib(), caseName+".json")
}

// safeName rejects names that could escape the library directories.
func safeName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("invalid name: %q", name)
	}
	return nil
}

// CaseInfo is a ProjectLib case summary.
type CaseInfo struct {
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Filename    string  `json:"filename"`
	CreatedAt   float64 `json:"created_at"`
	ModifiedAt  float64 `json:"modified_at"`
}

type projectDocument struct {
	ProjectID         string   `json:"project_id"`
	ProjectName       string   `json:"project_name"`
	ResearchQuestions []string `json:"research_questions"`
}

// Cases lists all case definitions in ProjectLib, sorted by project ID.
// A missing ProjectLib directory is an empty library; unreadable case files
// are skipped with a log line rather than failing the listing.
func (l *Library) Cases() ([]CaseInfo, error) {
	entries, err := os.ReadDir(l.projectLib())
	if os.IsNotExist(err) {
		return []CaseInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ProjectLib: %w", err)
	}

	cases := []CaseInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(l.projectLib(), entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("Skipping unreadable case file", "filename", entry.Name(), "error", err)
			continue
		}
		var doc projectDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			l.logger.Warn("Skipping malformed case file", "filename", entry.Name(), "error", err)
			continue
		}
		if doc.ProjectID == "" {
			doc.ProjectID = strings.TrimSuffix(entry.Name(), ".json")
		}
		if doc.ProjectName == "" {
			doc.ProjectName = "Untitled Project"
		}
		info, err := entry.Info()
		if err != nil {
			l.logger.Warn("Skipping unstatable case file", "filename", entry.Name(), "error", err)
			continue
		}
		cases = append(cases, CaseInfo{
			ProjectID:   doc.ProjectID,
			ProjectName: doc.ProjectName,
			Filename:    entry.Name(),
			// Go exposes no portable creation time, so both fields carry
			// mtime and are always equal.
			CreatedAt:  float64(info.ModTime().Unix()),
			ModifiedAt: float64(info.ModTime().Unix()),
		})
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].ProjectID < cases[j].ProjectID })
	return cases, nil
}

// CaseExists reports whether a case has a DataLib directory.
func (l *Library) CaseExists(caseName string) bool {
	if safeName(caseName) != nil {
		return false
	}
	info, err := os.Stat(l.dataLib(caseName))
	return err == nil && info.IsDir()
}

// FileInfo describes one DataLib source file.
type FileInfo struct {
	Filename   string  `json:"filename"`
	FileType   string  `json:"file_type"`
	Size       int64   `json:"size"`
	ModifiedAt float64 `json:"modified_at"`
}

// CaseFiles lists the source files for a case.
func (l *Library) CaseFiles(caseName string) ([]FileInfo, error) {
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

	files := []FileInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Filename:   entry.Name(),
			FileType:   fileType(entry.Name()),
			Size:       info.Size(),
			ModifiedAt: float64(info.ModTime().Unix()),
		})
	}
	return files, nil
}

func fileType(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "unknown"
	}
	return ext
}

// ResearchQuestions returns the research questions defined for a case.
func (l *Library) ResearchQuestions(caseName string) ([]string, error) {
	if err := safeName(caseName); err != nil {
		return nil, notFound("project %s", caseName)
	}
	data, err := os.ReadFile(l.projectFile(caseName))
	if os.IsNotExist(err) {
		return nil, notFound("project %s", caseName)
	}
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", caseName, err)
	}
	var doc projectDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", caseName, err)
	}
	if doc.ResearchQuestions == nil {
		return []string{}, nil
	}
	return doc.ResearchQuestions, nil
}

// ResearchQuestionsIfAny is the lenient variant used when building prompts:
// a missing or malformed project file yields no questions, not an error.
func (l *Library) ResearchQuestionsIfAny(caseName string) []string {
	questions, err := l.ResearchQuestions(caseName)
	if err != nil {
		return nil
	}
	return questions
}

// SetResearchQuestions rewrites a case's research questions, preserving the
// rest of the project document.
func (l *Library) SetResearchQuestions(caseName string, questions []string) error {
	if err := safeName(caseName); err != nil {
		return notFound("project %s", caseName)
	}
	path := l.projectFile(caseName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return notFound("project %s", caseName)
	}
	if err != nil {
		return fmt.Errorf("read project %s: %w", caseName, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse project %s: %w", caseName, err)
	}
	doc["research_questions"] = questions

	updated, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal project %s: %w", caseName, err)
	}
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return fmt.Errorf("write project %s: %w", caseName, err)
	}
	return nil
}
