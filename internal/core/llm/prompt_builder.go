package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chartgen/chartgen-api/internal/core/dataset"
)

// BuildChartPrompt composes the system prompt describing the dataset and the
// JSON contract the model must answer with.
func BuildChartPrompt(meta dataset.Metadata) string {
	columns, _ := json.Marshal(meta.Columns)
	numerical, _ := json.Marshal(meta.NumericalColumns)
	categorical, _ := json.Marshal(meta.CategoricalColumns)
	datetime, _ := json.Marshal(meta.DatetimeColumns)

	var b strings.Builder
	b.WriteString("You are a data visualization expert. Convert the user's natural language request into a JSON chart specification.\n\n")

	b.WriteString("DATASET INFORMATION:\n")
	fmt.Fprintf(&b, "- Total rows: %d\n", meta.RowCount)
	fmt.Fprintf(&b, "- Available columns: %s\n", columns)
	fmt.Fprintf(&b, "- Numerical columns: %s\n", numerical)
	fmt.Fprintf(&b, "- Categorical columns: %s\n", categorical)
	fmt.Fprintf(&b, "- Datetime columns: %s\n\n", datetime)

	b.WriteString("RESPONSE FORMAT - respond with ONLY this JSON structure:\n")
	b.WriteString(`{
  "chart_type": "bar|line|scatter|pie|heatmap|area|histogram|box",
  "x_axis": "column_name",
  "y_axis": "column_name or null",
  "color_by": "column_name or null",
  "aggregation": "sum|mean|count|min|max|none",
  "filters": [{"column": "column_name", "operator": "==|!=|>|<|>=|<=", "value": "filter_value"}],
  "title": "chart title",
  "x_label": "x axis label",
  "y_label": "y axis label",
  "customization": {"color_scheme": "default|viridis|plasma|coolwarm", "show_legend": true, "data_labels": false}
}`)
	b.WriteString("\n\n")

	b.WriteString("CHART TYPE REQUIREMENTS:\n")
	b.WriteString("- bar: x_axis required; y_axis optional (counts of x when omitted)\n")
	b.WriteString("- line: x_axis and y_axis required, x usually datetime or ordered\n")
	b.WriteString("- scatter: x_axis and y_axis required, both numerical\n")
	b.WriteString("- pie: x_axis required (categories), values are counts\n")
	b.WriteString("- heatmap: uses all numerical columns for a correlation matrix\n")
	b.WriteString("- area: x_axis and y_axis required\n")
	b.WriteString("- histogram: x_axis required and should be numerical\n")
	b.WriteString("- box: x_axis and y_axis required, y numerical\n\n")

	b.WriteString("RULES:\n")
	b.WriteString("1. Only use column names that exist in the dataset\n")
	b.WriteString("2. Respond with ONLY the JSON object, no explanations, no markdown\n")
	b.WriteString("3. Use null for optional fields you do not need\n")
	b.WriteString("4. Choose the chart type that best matches the request\n")

	return b.String()
}
