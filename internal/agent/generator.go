package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CB5Capital/research-terminal-backend/internal/dashboard"
	"github.com/CB5Capital/research-terminal-backend/internal/extract"
	"github.com/CB5Capital/research-terminal-backend/internal/library"
)

// Generator turns a case source file into dashboard items via function
// calling, then hands the grown library to the optimizer.
type Generator struct {
	llm       Completer
	store     *dashboard.Store
	lib       *library.Library
	optimizer *Optimizer
	logger    *slog.Logger
}

func NewGenerator(llm Completer, store *dashboard.Store, lib *library.Library, optimizer *Optimizer, logger *slog.Logger) *Generator {
	return &Generator{llm: llm, store: store, lib: lib, optimizer: optimizer, logger: logger}
}

// GenerationResult reports what a generation run produced.
type GenerationResult struct {
	Success      bool                `json:"success"`
	ItemsCreated int                 `json:"items_created"`
	Items        []dashboard.Item    `json:"items"`
	Optimization *OptimizationResult `json:"optimization"`
	Message      string              `json:"message"`
}

const generatorSystemPrompt = `You are an AI agent specialized in creating comprehensive dashboard components from business documents.

Your task is to analyze the provided file content and create multiple relevant dashboard items that provide valuable insights for business analysis.%s

Guidelines:
1. Create multiple dashboard components (aim for 4-8 components)
2. Use appropriate component types for different types of data:
- Use metric_card for key numbers, KPIs, and important values
- Use data_table for structured data that can be organized in rows/columns
- Use financial_chart for numerical data that can be visualized
- Use list_items for bullet points, key factors, or lists
- Use text_analysis for comprehensive analysis with insights
- Use competitor_analysis for competitor-related information
- Use risk_assessment for risk-related information
- Use short_text for brief summaries
- Use long_text for detailed explanations
- Use progress_bar for completion rates or percentages

3. Extract specific numbers, percentages, and data points
4. Identify key insights, trends, and important information
5. Create components that would be valuable for business decision-making
6. Always include the source filename in your function calls
7. Provide meaningful titles and clear, concise content
8. Vary the component sizes appropriately (small for metrics, medium/large for detailed components)
9. PRIORITIZE information that helps answer the research questions listed above

Remember to call the appropriate functions to create each dashboard component. Be thorough and create a comprehensive dashboard that covers all important aspects of the file content, especially focusing on data that addresses the research questions.`

// GenerateFromFile analyzes one DataLib file and appends the resulting
// items to the case's dashboard library. Optimization runs afterwards but
// is best-effort: a generation that produced items succeeds even when the
// optimizer fails.
func (g *Generator) GenerateFromFile(ctx context.Context, caseName, filename string) (*GenerationResult, error) {
	path, err := g.lib.DataFilePath(caseName, filename)
	if err != nil {
		return nil, err
	}

	content, err := extract.ForAnalysis(path, filename)
	if err != nil {
		return nil, err
	}

	questions := g.lib.ResearchQuestionsIfAny(caseName)
	system := fmt.Sprintf(generatorSystemPrompt, researchQuestionsBlock(questions))
	user := generatorUserPrompt(caseName, filename, content, questions)

	calls, err := g.llm.ToolCompletion(ctx, system, user, dashboard.ComponentTools(), 4000, 0.3)
	if err != nil {
		return nil, fmt.Errorf("generate dashboard for %s: %w", filename, err)
	}

	var fileSize int64
	if info, statErr := os.Stat(path); statErr == nil {
		fileSize = info.Size()
	}
	fileExt := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if fileExt == "" {
		fileExt = "unknown"
	}

	items := make([]dashboard.Item, 0, len(calls))
	for _, call := range calls {
		component, buildErr := dashboard.Build(call.Name, call.Arguments)
		if buildErr != nil {
			g.logger.Warn("Skipping failed component build", "tool", call.Name, "error", buildErr)
			continue
		}
		items = append(items, dashboard.Item{
			ID:           fmt.Sprintf("%s_%s_%s_%s", caseName, filename, call.Name, uuid.NewString()[:8]),
			SourceFile:   filename,
			CreatedAt:    time.Now().Format(time.RFC3339),
			AnalysisType: "file_analysis",
			Component:    component,
			Metadata: map[string]any{
				"file_type":      fileExt,
				"file_size":      fileSize,
				"component_type": component.Type(),
				"analysis_query": fmt.Sprintf("Extract %s insights from %s", component.Type(), filename),
			},
		})
	}

	if len(items) > 0 {
		if err := g.store.Append(caseName, items); err != nil {
			return nil, err
		}
	}

	result := &GenerationResult{
		Success:      true,
		ItemsCreated: len(items),
		Items:        items,
		Message:      fmt.Sprintf("Successfully generated %d dashboard items from %s", len(items), filename),
	}

	g.logger.Info("Running optimization after generation", "case", caseName)
	optimization, optErr := g.optimizer.Optimize(ctx, caseName)
	if optErr != nil {
		g.logger.Error("Optimization failed but generation succeeded", "case", caseName, "error", optErr)
		return result, nil
	}
	result.Optimization = optimization
	if optimization.Success {
		result.Message += fmt.Sprintf(" and optimized to %d items", optimization.FinalItemCount)
	}
	return result, nil
}

func researchQuestionsBlock(questions []string) string {
	if len(questions) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nRESEARCH QUESTIONS TO ADDRESS:\nThe goal of this analysis is to provide data and insights that help answer these research questions:\n")
	for _, q := range questions {
		sb.WriteString("- ")
		sb.WriteString(q)
		sb.WriteString("\n")
	}
	sb.WriteString("\nWhen creating dashboard components, prioritize information that directly addresses or provides data relevant to answering these research questions.")
	return sb.String()
}

func generatorUserPrompt(caseName, filename, content string, questions []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Please analyze the following file content and create comprehensive dashboard components:\n\nFile: %s\nCase: %s\nContent: %s", filename, caseName, content)
	if len(questions) > 0 {
		sb.WriteString("\n\nRemember to focus on information that helps answer these research questions:\n")
		for _, q := range questions {
			sb.WriteString("- ")
			sb.WriteString(q)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n\nPlease create multiple relevant dashboard components that provide valuable business insights from this content. Use the available functions to create each component.")
	return sb.String()
}
