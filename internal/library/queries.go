package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CB5Capital/research-terminal-backend/internal/dashboard"
)

// Dashboard is a saved query result in QueryLib: the composed layout, the
// enriched components and the follow-up conversation attached to it.
type Dashboard struct {
	Title               string                `json:"title"`
	Subtitle            string                `json:"subtitle"`
	Layout              string                `json:"layout"`
	Columns             int                   `json:"columns"`
	Components          []dashboard.Component `json:"components"`
	ConversationHistory []ChatMessage         `json:"conversation_history"`
	Metadata            DashboardMetadata     `json:"metadata"`
}

type DashboardMetadata struct {
	Query               string   `json:"query"`
	CaseName            string   `json:"case_name"`
	ResearchQuestions   []string `json:"research_questions"`
	ItemsSelected       int      `json:"items_selected"`
	TotalItemsAvailable int      `json:"total_items_available"`
	SelectedItemIDs     []string `json:"selected_item_ids"`
	CreatedAt           string   `json:"created_at"`
	DashboardID         string   `json:"dashboard_id"`
}

// ChatMessage is one entry of a dashboard's conversation history.
type ChatMessage struct {
	ID        int      `json:"id"`
	Type      string   `json:"type"`
	Content   string   `json:"content"`
	Sources   []string `json:"sources,omitempty"`
	Timestamp string   `json:"timestamp"`
}

func (l *Library) queryLib(caseName string) string {
	return filepath.Join(l.root, "QueryLib", caseName)
}

func (l *Library) dashboardPath(caseName, dashboardID string) string {
	return filepath.Join(l.queryLib(caseName), dashboardID+".json")
}

// SaveDashboard persists a composed dashboard under QueryLib.
func (l *Library) SaveDashboard(caseName string, d *Dashboard) error {
	if err := safeName(caseName); err != nil {
		return err
	}
	if err := os.MkdirAll(l.queryLib(caseName), 0o755); err != nil {
		return fmt.Errorf("create QueryLib dir for case %s: %w", caseName, err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dashboard %s: %w", d.Metadata.DashboardID, err)
	}
	path := l.dashboardPath(caseName, d.Metadata.DashboardID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dashboard %s: %w", d.Metadata.DashboardID, err)
	}
	return nil
}

// Dashboard loads one saved dashboard by ID.
func (l *Library) Dashboard(caseName, dashboardID string) (*Dashboard, error) {
	if err := safeName(caseName); err != nil {
		return nil, notFound("case %s", caseName)
	}
	if err := safeName(dashboardID); err != nil {
		return nil, notFound("dashboard %s", dashboardID)
	}
	data, err := os.ReadFile(l.dashboardPath(caseName, dashboardID))
	if os.IsNotExist(err) {
		return nil, notFound("dashboard %s for case %s", dashboardID, caseName)
	}
	if err != nil {
		return nil, fmt.Errorf("read dashboard %s: %w", dashboardID, err)
	}
	var d Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dashboard %s: %w", dashboardID, err)
	}
	return &d, nil
}

// QueryInfo summarizes a saved dashboard for the query-history listing.
type QueryInfo struct {
	DashboardID         string `json:"dashboard_id"`
	Query               string `json:"query"`
	Title               string `json:"title"`
	Subtitle            string `json:"subtitle"`
	CreatedAt           string `json:"created_at"`
	ItemsSelected       int    `json:"items_selected"`
	TotalItemsAvailable int    `json:"total_items_available"`
	ComponentsCount     int    `json:"components_count"`
	FilePath            string `json:"file_path"`
}

// Queries lists all saved dashboards for a case, newest first. A case with
// no saved queries yields an empty list.
func (l *Library) Queries(caseName string) ([]QueryInfo, error) {
	if err := safeName(caseName); err != nil {
		return []QueryInfo{}, nil
	}
	entries, err := os.ReadDir(l.queryLib(caseName))
	if os.IsNotExist(err) {
		return []QueryInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read QueryLib for case %s: %w", caseName, err)
	}

	queries := []QueryInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "dashboard_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.queryLib(caseName), name))
		if err != nil {
			l.logger.Warn("Skipping unreadable dashboard file", "case", caseName, "filename", name, "error", err)
			continue
		}
		var d Dashboard
		if err := json.Unmarshal(data, &d); err != nil {
			l.logger.Warn("Skipping malformed dashboard file", "case", caseName, "filename", name, "error", err)
			continue
		}

		query := d.Metadata.Query
		if query == "" {
			query = d.Title
		}
		queries = append(queries, QueryInfo{
			DashboardID:         strings.TrimSuffix(name, ".json"),
			Query:               query,
			Title:               d.Title,
			Subtitle:            d.Subtitle,
			CreatedAt:           d.Metadata.CreatedAt,
			ItemsSelected:       d.Metadata.ItemsSelected,
			TotalItemsAvailable: d.Metadata.TotalItemsAvailable,
			ComponentsCount:     len(d.Components),
			FilePath:            name,
		})
	}
	sort.Slice(queries, func(i, j int) bool { return queries[i].CreatedAt > queries[j].CreatedAt })
	return queries, nil
}

// AppendConversation adds messages to a saved dashboard's conversation
// history, numbering them after the existing entries.
func (l *Library) AppendConversation(caseName, dashboardID string, messages []ChatMessage) error {
	d, err := l.Dashboard(caseName, dashboardID)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		msg.ID = len(d.ConversationHistory) + 1
		d.ConversationHistory = append(d.ConversationHistory, msg)
	}
	return l.SaveDashboard(caseName, d)
}
