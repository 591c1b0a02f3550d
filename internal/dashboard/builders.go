package dashboard

import (
	"encoding/json"
	"fmt"
)

// Build materializes a component from a tool call returned by the model.
// The tool name selects the builder and the raw JSON arguments are decoded
// into that builder's argument struct.
func Build(toolName string, arguments json.RawMessage) (Component, error) {
	builder, ok := builders[toolName]
	if !ok {
		return nil, fmt.Errorf("unknown component tool: %s", toolName)
	}
	component, err := builder(arguments)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", toolName, err)
	}
	return component, nil
}

type buildFunc func(json.RawMessage) (Component, error)

var builders = map[string]buildFunc{
	"create_metric_card":         buildMetricCard,
	"create_data_table":          buildDataTable,
	"create_financial_chart":     buildFinancialChart,
	"create_list_items":          buildListItems,
	"create_short_text":          buildShortText,
	"create_long_text":           buildLongText,
	"create_text_analysis":       buildTextAnalysis,
	"create_competitor_analysis": buildCompetitorAnalysis,
	"create_risk_assessment":     buildRiskAssessment,
	"create_progress_bar":        buildProgressBar,
}

type sourceArgs struct {
	SourceFilename string `json:"source_filename"`
	KeyInsight     string `json:"key_insight"`
}

func buildMetricCard(raw json.RawMessage) (Component, error) {
	var args struct {
		Label string `json:"label"`
		Value string `json:"value"`
		Size  string `json:"size"`
		Color string `json:"color"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Label == "" || args.Value == "" {
		return nil, fmt.Errorf("metric card requires label and value")
	}
	c := Component{
		"type":  TypeMetricCard,
		"size":  defaultString(args.Size, "small"),
		"label": args.Label,
		"value": args.Value,
		"color": defaultString(args.Color, "blue"),
	}
	return c.withSource(args.SourceFilename, "High", args.KeyInsight, "Metric: "+args.Label), nil
}

func buildDataTable(raw json.RawMessage) (Component, error) {
	var args struct {
		Title   string     `json:"title"`
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
		Size    string     `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || len(args.Headers) == 0 {
		return nil, fmt.Errorf("data table requires title and headers")
	}
	c := Component{
		"type":    TypeDataTable,
		"size":    defaultString(args.Size, "medium"),
		"title":   args.Title,
		"headers": args.Headers,
		"rows":    args.Rows,
	}
	return c.withSource(args.SourceFilename, "High", args.KeyInsight, "Table data: "+args.Title), nil
}

func buildFinancialChart(raw json.RawMessage) (Component, error) {
	var args struct {
		Title string `json:"title"`
		Data  []struct {
			Label string  `json:"label"`
			Value float64 `json:"value"`
		} `json:"data"`
		ChartType string `json:"chart_type"`
		Size      string `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || len(args.Data) == 0 {
		return nil, fmt.Errorf("financial chart requires title and data points")
	}
	c := Component{
		"type":       TypeFinancialChart,
		"size":       defaultString(args.Size, "medium"),
		"title":      args.Title,
		"data":       args.Data,
		"chart_type": defaultString(args.ChartType, "bar"),
	}
	return c.withSource(args.SourceFilename, "High", args.KeyInsight, "Chart data: "+args.Title), nil
}

func buildListItems(raw json.RawMessage) (Component, error) {
	var args struct {
		Title string   `json:"title"`
		Items []string `json:"items"`
		Size  string   `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || len(args.Items) == 0 {
		return nil, fmt.Errorf("list requires title and items")
	}
	c := Component{
		"type":  TypeListItems,
		"size":  defaultString(args.Size, "medium"),
		"title": args.Title,
		"items": args.Items,
	}
	return c.withSource(args.SourceFilename, "High", args.KeyInsight, "List: "+args.Title), nil
}

func buildShortText(raw json.RawMessage) (Component, error) {
	var args struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Size    string `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || args.Content == "" {
		return nil, fmt.Errorf("short text requires title and content")
	}
	c := Component{
		"type":    TypeShortText,
		"size":    defaultString(args.Size, "medium"),
		"title":   args.Title,
		"content": args.Content,
	}
	return c.withSource(args.SourceFilename, "Medium", args.KeyInsight, "Short text: "+args.Title), nil
}

func buildLongText(raw json.RawMessage) (Component, error) {
	var args struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Size    string `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || args.Content == "" {
		return nil, fmt.Errorf("long text requires title and content")
	}
	c := Component{
		"type":    TypeLongText,
		"size":    defaultString(args.Size, "large"),
		"title":   args.Title,
		"content": args.Content,
	}
	return c.withSource(args.SourceFilename, "High", args.KeyInsight, "Long text analysis: "+args.Title), nil
}

func buildTextAnalysis(raw json.RawMessage) (Component, error) {
	var args struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		Insights   []string `json:"insights"`
		Conclusion string   `json:"conclusion"`
		Size       string   `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || args.Content == "" {
		return nil, fmt.Errorf("text analysis requires title and content")
	}
	c := Component{
		"type":       TypeTextAnalysis,
		"size":       defaultString(args.Size, "large"),
		"title":      args.Title,
		"content":    args.Content,
		"insights":   args.Insights,
		"conclusion": args.Conclusion,
	}
	return c.withSource(args.SourceFilename, "High", args.KeyInsight, "Analysis: "+args.Title), nil
}

func buildCompetitorAnalysis(raw json.RawMessage) (Component, error) {
	var args struct {
		Title       string `json:"title"`
		Competitors []struct {
			Name        string `json:"name"`
			MarketShare string `json:"market_share"`
			KeyStrength string `json:"key_strength"`
			Position    string `json:"position"`
		} `json:"competitors"`
		Size string `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || len(args.Competitors) == 0 {
		return nil, fmt.Errorf("competitor analysis requires title and competitors")
	}
	c := Component{
		"type":        TypeCompetitorAnalysis,
		"size":        defaultString(args.Size, "large"),
		"title":       args.Title,
		"competitors": args.Competitors,
	}
	return c.withSource(args.SourceFilename, "High", args.KeyInsight, "Competitor analysis: "+args.Title), nil
}

func buildRiskAssessment(raw json.RawMessage) (Component, error) {
	var args struct {
		Title string `json:"title"`
		Risks []struct {
			Title       string `json:"title"`
			Level       string `json:"level"`
			Description string `json:"description"`
		} `json:"risks"`
		Size string `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || len(args.Risks) == 0 {
		return nil, fmt.Errorf("risk assessment requires title and risks")
	}
	c := Component{
		"type":  TypeRiskAssessment,
		"size":  defaultString(args.Size, "medium"),
		"title": args.Title,
		"risks": args.Risks,
	}
	return c.withSource(args.SourceFilename, "High", args.KeyInsight, "Risk assessment: "+args.Title), nil
}

func buildProgressBar(raw json.RawMessage) (Component, error) {
	var args struct {
		Title    string   `json:"title"`
		Value    *float64 `json:"value"`
		MaxValue float64  `json:"max_value"`
		Label    string   `json:"label"`
		Color    string   `json:"color"`
		Size     string   `json:"size"`
		sourceArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" || args.Value == nil {
		return nil, fmt.Errorf("progress bar requires title and value")
	}
	if args.MaxValue == 0 {
		args.MaxValue = 100
	}
	c := Component{
		"type":      TypeProgressBar,
		"size":      defaultString(args.Size, "medium"),
		"title":     args.Title,
		"value":     *args.Value,
		"max_value": args.MaxValue,
		"color":     defaultString(args.Color, "blue"),
	}
	if args.Label != "" {
		c["label"] = args.Label
	}
	return c.withSource(args.SourceFilename, "Medium", args.KeyInsight, "Progress metric: "+args.Title), nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
