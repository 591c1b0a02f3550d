package library

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLibrary(t *testing.T) (*Library, string) {
	t.Helper()
	root := t.TempDir()
	return New(root, slog.New(slog.NewTextHandler(os.Stderr, nil))), root
}

func writeProject(t *testing.T, root, caseName string, doc map[string]any) {
	t.Helper()
	dir := filepath.Join(root, "ProjectLib")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, caseName+".json"), data, 0o644))
}

func writeDataFile(t *testing.T, root, caseName, filename, content string) {
	t.Helper()
	dir := filepath.Join(root, "DataLib", caseName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644))
}

func TestCases(t *testing.T) {
	lib, root := testLibrary(t)

	t.Run("no ProjectLib yields empty list", func(t *testing.T) {
		cases, err := lib.Cases()
		require.NoError(t, err)
		assert.Empty(t, cases)
	})

	writeProject(t, root, "C2", map[string]any{"project_id": "C2", "project_name": "Fintech Rollup"})
	writeProject(t, root, "C1", map[string]any{"project_id": "C1", "project_name": "SaaS Platform"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "ProjectLib", "broken.json"), []byte("{not json"), 0o644))

	cases, err := lib.Cases()
	require.NoError(t, err)
	require.Len(t, cases, 2, "malformed case files are skipped")
	assert.Equal(t, "C1", cases[0].ProjectID, "cases sorted by project_id")
	assert.Equal(t, "SaaS Platform", cases[0].ProjectName)
	assert.Equal(t, "C1.json", cases[0].Filename)
}

func TestCaseExists(t *testing.T) {
	lib, root := testLibrary(t)
	assert.False(t, lib.CaseExists("C1"))

	writeDataFile(t, root, "C1", "notes.txt", "hello")
	assert.True(t, lib.CaseExists("C1"))
	assert.False(t, lib.CaseExists("../C1"), "path traversal is rejected")
}

func TestCaseFiles(t *testing.T) {
	lib, root := testLibrary(t)

	_, err := lib.CaseFiles("C1")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	writeDataFile(t, root, "C1", "market.txt", "market data")
	writeDataFile(t, root, "C1", "deck.pdf", "%PDF-")

	files, err := lib.CaseFiles("C1")
	require.NoError(t, err)
	require.Len(t, files, 2)

	byName := map[string]FileInfo{}
	for _, f := range files {
		byName[f.Filename] = f
	}
	assert.Equal(t, "txt", byName["market.txt"].FileType)
	assert.Equal(t, "pdf", byName["deck.pdf"].FileType)
	assert.Equal(t, int64(11), byName["market.txt"].Size)
}

func TestResearchQuestions(t *testing.T) {
	lib, root := testLibrary(t)

	_, err := lib.ResearchQuestions("C1")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	writeProject(t, root, "C1", map[string]any{
		"project_id":         "C1",
		"project_name":       "SaaS Platform",
		"research_questions": []string{"What is the churn rate?"},
	})

	questions, err := lib.ResearchQuestions("C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"What is the churn rate?"}, questions)

	require.NoError(t, lib.SetResearchQuestions("C1", []string{"What is TAM?", "Who are the competitors?"}))

	questions, err = lib.ResearchQuestions("C1")
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	// Other project fields survive the rewrite.
	data, err := os.ReadFile(filepath.Join(root, "ProjectLib", "C1.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "SaaS Platform", doc["project_name"])
}

func TestResearchQuestionsIfAny(t *testing.T) {
	lib, root := testLibrary(t)
	assert.Nil(t, lib.ResearchQuestionsIfAny("C1"))

	writeProject(t, root, "C1", map[string]any{"project_id": "C1"})
	assert.Empty(t, lib.ResearchQuestionsIfAny("C1"))
}

func TestSaveTextAppendsExtension(t *testing.T) {
	lib, root := testLibrary(t)

	filename, size, err := lib.SaveText("C1", "meeting-notes", "Discussed pricing.")
	require.NoError(t, err)
	assert.Equal(t, "meeting-notes.txt", filename)
	assert.Equal(t, int64(len("Discussed pricing.")), size)

	data, err := os.ReadFile(filepath.Join(root, "DataLib", "C1", "meeting-notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Discussed pricing.", string(data))
}

func TestSaveNote(t *testing.T) {
	lib, _ := testLibrary(t)

	filename, timestamp, size, err := lib.SaveNote("C1", "call with founder")
	require.NoError(t, err)
	assert.Regexp(t, `^note_\d{8}_\d{6}\.txt$`, filename)
	assert.Contains(t, filename, timestamp)
	assert.Equal(t, int64(len("call with founder")), size)
}

func TestSaveScraped(t *testing.T) {
	lib, root := testLibrary(t)

	filename, _, err := lib.SaveScraped("C1", "Market Report: 2025 Outlook!", "https://example.com/report", "Growth is accelerating.")
	require.NoError(t, err)
	assert.Regexp(t, `^url_Market_Report_2025_Outlook_\d{8}_\d{6}\.txt$`, filename)

	data, err := os.ReadFile(filepath.Join(root, "DataLib", "C1", filename))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Title: Market Report: 2025 Outlook!")
	assert.Contains(t, content, "URL: https://example.com/report")
	assert.Contains(t, content, "Growth is accelerating.")
}

func TestSourcePathFallsBackToProjectLib(t *testing.T) {
	lib, root := testLibrary(t)

	_, err := lib.SourcePath("C1", "anything.txt")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	dir := filepath.Join(root, "ProjectLib", "C1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "case.txt"), []byte("case definition"), 0o644))

	path, err := lib.SourcePath("C1", "case.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "case.txt"), path)

	// Once DataLib exists it takes precedence.
	writeDataFile(t, root, "C1", "data.txt", "source data")
	path, err = lib.SourcePath("C1", "data.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "DataLib", "C1", "data.txt"), path)
}

func TestTextExcerpts(t *testing.T) {
	lib, root := testLibrary(t)

	writeDataFile(t, root, "C1", "a.txt", "aaaaaaaaaa")
	writeDataFile(t, root, "C1", "b.txt", "bbbb")
	writeDataFile(t, root, "C1", "skip.pdf", "binary")

	excerpts, err := lib.TextExcerpts("C1", 5, 4)
	require.NoError(t, err)
	require.Len(t, excerpts, 2, "only .txt files are read")
	assert.Equal(t, "aaaa", excerpts[0].Content, "content truncated to max chars")
}

func TestAnalysisFilenames(t *testing.T) {
	lib, root := testLibrary(t)

	writeDataFile(t, root, "C1", "report.txt", "x")
	writeDataFile(t, root, "C1", "data.csv", "x")
	writeDataFile(t, root, "C1", "image.png", "x")

	names, err := lib.AnalysisFilenames("C1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"report.txt", "data.csv"}, names)
}

func TestSettings(t *testing.T) {
	lib, _ := testLibrary(t)

	settings, err := lib.Settings()
	require.NoError(t, err)
	assert.Equal(t, "dark", settings["theme"])
	assert.Nil(t, settings["current_project"])

	updated, err := lib.UpdateSettings(Settings{"current_project": "C1"})
	require.NoError(t, err)
	assert.Equal(t, "C1", updated["current_project"])

	// Merge semantics: later updates keep earlier keys.
	updated, err = lib.UpdateSettings(Settings{"theme": "light"})
	require.NoError(t, err)
	assert.Equal(t, "light", updated["theme"])
	assert.Equal(t, "C1", updated["current_project"])
}

func TestDashboardRoundTrip(t *testing.T) {
	lib, _ := testLibrary(t)

	d := &Dashboard{
		Title:    "Market Overview",
		Subtitle: "Case C1",
		Layout:   "grid",
		Columns:  3,
		Metadata: DashboardMetadata{
			Query:       "market size",
			CaseName:    "C1",
			DashboardID: "dashboard_20260829_120000",
			CreatedAt:   "2026-08-29T12:00:00Z",
		},
	}
	require.NoError(t, lib.SaveDashboard("C1", d))

	loaded, err := lib.Dashboard("C1", "dashboard_20260829_120000")
	require.NoError(t, err)
	assert.Equal(t, "Market Overview", loaded.Title)

	_, err = lib.Dashboard("C1", "dashboard_missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestQueries(t *testing.T) {
	lib, root := testLibrary(t)

	queries, err := lib.Queries("C1")
	require.NoError(t, err)
	assert.Empty(t, queries)

	older := &Dashboard{
		Title:    "Older",
		Metadata: DashboardMetadata{Query: "q1", DashboardID: "dashboard_20260101_000000", CreatedAt: "2026-01-01T00:00:00Z"},
	}
	newer := &Dashboard{
		Title:    "Newer",
		Metadata: DashboardMetadata{Query: "q2", DashboardID: "dashboard_20260202_000000", CreatedAt: "2026-02-02T00:00:00Z"},
	}
	require.NoError(t, lib.SaveDashboard("C1", older))
	require.NoError(t, lib.SaveDashboard("C1", newer))

	// Files not following the dashboard_ naming are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "QueryLib", "C1", "notes.json"), []byte("{}"), 0o644))

	queries, err = lib.Queries("C1")
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "Newer", queries[0].Title, "newest first")
	assert.Equal(t, "dashboard_20260202_000000", queries[0].DashboardID)
}

func TestAppendConversation(t *testing.T) {
	lib, _ := testLibrary(t)

	d := &Dashboard{
		Title:    "Chat Target",
		Metadata: DashboardMetadata{DashboardID: "dashboard_20260829_130000"},
	}
	require.NoError(t, lib.SaveDashboard("C1", d))

	require.NoError(t, lib.AppendConversation("C1", "dashboard_20260829_130000", []ChatMessage{
		{Type: "user", Content: "What is the churn rate?", Timestamp: "2026-08-29T13:01:00Z"},
		{Type: "ai", Content: "Churn is 2% monthly.", Sources: []string{"metrics.txt"}, Timestamp: "2026-08-29T13:01:05Z"},
	}))

	loaded, err := lib.Dashboard("C1", "dashboard_20260829_130000")
	require.NoError(t, err)
	require.Len(t, loaded.ConversationHistory, 2)
	assert.Equal(t, 1, loaded.ConversationHistory[0].ID)
	assert.Equal(t, 2, loaded.ConversationHistory[1].ID)
	assert.Equal(t, "ai", loaded.ConversationHistory[1].Type)
}
