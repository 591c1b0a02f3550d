package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/CB5Capital/research-terminal-backend/internal/dashboard"
	"github.com/CB5Capital/research-terminal-backend/internal/library"
)

// Composer assembles a query-specific dashboard from a case's saved items.
// The model only picks items and lays them out; component content always
// comes from the item library.
type Composer struct {
	llm    Completer
	store  *dashboard.Store
	lib    *library.Library
	logger *slog.Logger
}

func NewComposer(llm Completer, store *dashboard.Store, lib *library.Library, logger *slog.Logger) *Composer {
	return &Composer{llm: llm, store: store, lib: lib, logger: logger}
}

type planPosition struct {
	Row int `json:"row" jsonschema:"description=Row the component starts on, starting at 1"`
	Col int `json:"col" jsonschema:"description=Column the component starts in, starting at 1"`
}

type planComponent struct {
	ItemID   string       `json:"item_id" jsonschema:"description=ID of the selected dashboard item"`
	Size     string       `json:"size" jsonschema:"enum=small,enum=medium,enum=large"`
	Position planPosition `json:"position"`
}

type dashboardPlan struct {
	Title      string          `json:"title" jsonschema:"description=Dashboard title based on the query"`
	Subtitle   string          `json:"subtitle" jsonschema:"description=Brief description of what this dashboard shows"`
	Layout     string          `json:"layout" jsonschema:"enum=grid"`
	Columns    int             `json:"columns" jsonschema:"description=Number of grid columns, between 2 and 4"`
	Components []planComponent `json:"components"`
}

type itemSummary struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	SourceFile string `json:"source_file"`
	CreatedAt  string `json:"created_at"`
}

const composerSystemPrompt = `You are an AI agent specialized in creating dashboard configurations from existing dashboard items.

Your task is to:
1. Analyze the user's query
2. Select the most relevant dashboard items from the available items
3. Create a dashboard layout that best addresses the user's query
4. Return a JSON dashboard configuration%s

Guidelines:
- Select 3-8 dashboard items that are most relevant to the query
- Arrange items in a logical layout (2-4 columns work best)
- Prioritize items that directly answer or relate to the user's query and research questions
- Consider the visual balance - mix different component types
- Use appropriate sizing (small for metrics, medium/large for detailed components)

Available dashboard item types:
- metric_card: KPIs and key numbers
- data_table: Structured data
- financial_chart: Charts and graphs
- list_items: Bulleted lists
- text_analysis: Analysis content
- competitor_analysis: Competitor comparisons
- risk_assessment: Risk analysis
- short_text: Brief summaries
- long_text: Detailed content
- progress_bar: Progress indicators`

// Compose selects items matching the query and saves the resulting
// dashboard under the case's QueryLib.
func (c *Composer) Compose(ctx context.Context, caseName, query string) (*library.Dashboard, error) {
	available, err := c.store.Items(caseName)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, &library.NotFoundError{What: fmt.Sprintf("dashboard items for case %s", caseName)}
	}

	questions := c.lib.ResearchQuestionsIfAny(caseName)

	summaries := make([]itemSummary, 0, len(available))
	for _, item := range available {
		summaries = append(summaries, itemSummary{
			ID:         item.ID,
			Type:       item.Component.Type(),
			Title:      item.Component.DisplayTitle(),
			SourceFile: item.SourceFile,
			CreatedAt:  item.CreatedAt,
		})
	}
	summaryJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal item summaries: %w", err)
	}

	system := fmt.Sprintf(composerSystemPrompt, composerQuestionsContext(questions))
	user := composerUserPrompt(caseName, query, string(summaryJSON), questions)

	var plan dashboardPlan
	if _, err := c.llm.StructuredCompletion(ctx, system, user, "dashboard_layout", &plan, 2000, 0.3); err != nil {
		return nil, fmt.Errorf("compose dashboard for case %s: %w", caseName, err)
	}

	byID := make(map[string]dashboard.Item, len(available))
	for _, item := range available {
		byID[item.ID] = item
	}

	selectedIDs := make([]string, 0, len(plan.Components))
	components := make([]dashboard.Component, 0, len(plan.Components))
	for _, pc := range plan.Components {
		selectedIDs = append(selectedIDs, pc.ItemID)
		item, ok := byID[pc.ItemID]
		if !ok {
			c.logger.Warn("Model selected unknown item, skipping", "case", caseName, "item_id", pc.ItemID)
			continue
		}
		component := make(dashboard.Component, len(item.Component)+2)
		for k, v := range item.Component {
			component[k] = v
		}
		if pc.Size != "" {
			component["size"] = pc.Size
		}
		component["position"] = map[string]any{"row": pc.Position.Row, "col": pc.Position.Col}
		components = append(components, component)
	}

	now := time.Now()
	dashboardID := "dashboard_" + now.Format("20060102_150405")
	result := &library.Dashboard{
		Title:               defaultText(plan.Title, "Dashboard for: "+query),
		Subtitle:            defaultText(plan.Subtitle, "Case "+caseName),
		Layout:              defaultText(plan.Layout, "grid"),
		Columns:             defaultColumns(plan.Columns),
		Components:          components,
		ConversationHistory: []library.ChatMessage{},
		Metadata: library.DashboardMetadata{
			Query:               query,
			CaseName:            caseName,
			ResearchQuestions:   questions,
			ItemsSelected:       len(components),
			TotalItemsAvailable: len(available),
			SelectedItemIDs:     selectedIDs,
			CreatedAt:           now.Format(time.RFC3339),
			DashboardID:         dashboardID,
		},
	}

	if err := c.lib.SaveDashboard(caseName, result); err != nil {
		return nil, err
	}
	c.logger.Info("Composed dashboard", "case", caseName, "dashboard_id", dashboardID, "components", len(components))
	return result, nil
}

func composerQuestionsContext(questions []string) string {
	if len(questions) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nRESEARCH QUESTIONS CONTEXT:\nThis case is focused on answering these research questions:\n")
	for _, q := range questions {
		sb.WriteString("- ")
		sb.WriteString(q)
		sb.WriteString("\n")
	}
	sb.WriteString("\nWhen selecting dashboard items, prioritize those that provide data and insights relevant to these research questions. Consider how each item contributes to answering these key research areas.")
	return sb.String()
}

func composerUserPrompt(caseName, query, summaryJSON string, questions []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Please create a dashboard configuration for the following query:\n\nQuery: %q\nCase: %s", query, caseName)
	if len(questions) > 0 {
		sb.WriteString("\n\nResearch Questions for this case:\n")
		for _, q := range questions {
			sb.WriteString("- ")
			sb.WriteString(q)
			sb.WriteString("\n")
		}
		sb.WriteString("\nConsider how your dashboard selection can provide insights to answer these research questions.")
	}
	fmt.Fprintf(&sb, "\n\nAvailable Dashboard Items:\n%s\n\nPlease analyze the query and select the most relevant items to create a comprehensive dashboard that addresses the user's needs and helps answer the research questions.", summaryJSON)
	return sb.String()
}

func defaultText(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func defaultColumns(n int) int {
	if n < 1 {
		return 3
	}
	return n
}
