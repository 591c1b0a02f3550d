package dashboard

// Component is a renderable dashboard component. Components are
// heterogeneous (a metric card carries label/value, a chart carries data
// points) and are stored and shipped to the frontend as-is, so they are kept
// as open JSON objects with typed accessors rather than a closed struct.
type Component map[string]any

// Component type names understood by the frontend.
const (
	TypeMetricCard         = "metric_card"
	TypeDataTable          = "data_table"
	TypeFinancialChart     = "financial_chart"
	TypeListItems          = "list_items"
	TypeShortText          = "short_text"
	TypeLongText           = "long_text"
	TypeTextAnalysis       = "text_analysis"
	TypeCompetitorAnalysis = "competitor_analysis"
	TypeRiskAssessment     = "risk_assessment"
	TypeProgressBar        = "progress_bar"
)

// Source records which case file a component's data came from.
type Source struct {
	Filename   string `json:"filename"`
	Relevance  string `json:"relevance"`
	KeyInsight string `json:"key_insight"`
}

func (c Component) Type() string {
	return c.stringField("type")
}

func (c Component) Size() string {
	return c.stringField("size")
}

// DisplayTitle returns the component's title, falling back to its label for
// card-style components that only carry a label.
func (c Component) DisplayTitle() string {
	if t := c.stringField("title"); t != "" {
		return t
	}
	return c.stringField("label")
}

func (c Component) Value() string {
	return c.stringField("value")
}

func (c Component) stringField(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

// withSource attaches a sources entry when a source filename is known.
// defaultInsight is used when the model did not provide a key insight.
func (c Component) withSource(filename, relevance, insight, defaultInsight string) Component {
	if filename == "" {
		return c
	}
	if insight == "" {
		insight = defaultInsight
	}
	c["sources"] = []Source{{
		Filename:   filename,
		Relevance:  relevance,
		KeyInsight: insight,
	}}
	return c
}
