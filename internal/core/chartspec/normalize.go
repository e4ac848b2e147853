package chartspec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chartgen/chartgen-api/internal/core/dataset"
)

// ErrInvalidSpec marks a chart request that cannot be repaired against the
// dataset, currently only a missing or unknown x_axis.
var ErrInvalidSpec = errors.New("invalid chart specification")

var filterColumnKeys = []string{"column", "column_name", "col", "field"}
var filterOperatorKeys = []string{"operator", "op", "relation", "operator_symbol"}
var filterValueKeys = []string{"value", "val", "v"}

var operatorSynonyms = map[string]string{
	"=":          "==",
	"==":         "==",
	"equals":     "==",
	"is":         "==",
	"!=":         "!=",
	"neq":        "!=",
	"not equals": "!=",
	">":          ">",
	"<":          "<",
	">=":         ">=",
	"<=":         "<=",
}

// Normalize repairs a raw model intent into a canonical ChartSpec, validating
// column references against the dataset metadata. Unusable optional fields are
// dropped or defaulted rather than failing; only a missing x_axis is fatal.
// Running Normalize on its own output produces the same spec.
func Normalize(raw RawIntent, meta dataset.Metadata) (*ChartSpec, error) {
	spec := &ChartSpec{}

	spec.ChartType = ChartType(strings.ToLower(strings.TrimSpace(rawString(raw, "chart_type"))))

	xAxis := strings.TrimSpace(rawString(raw, "x_axis"))
	if xAxis == "" || !hasColumn(meta, xAxis) {
		return nil, fmt.Errorf("%w: x_axis %q not found in data", ErrInvalidSpec, xAxis)
	}
	spec.XAxis = xAxis

	if y := strings.TrimSpace(rawString(raw, "y_axis")); y != "" && hasColumn(meta, y) {
		spec.YAxis = y
	}
	if c := strings.TrimSpace(rawString(raw, "color_by")); c != "" && hasColumn(meta, c) {
		spec.ColorBy = c
	}

	spec.Aggregation = normalizeAggregation(rawString(raw, "aggregation"), spec.YAxis, meta)
	spec.Filters = normalizeFilters(raw["filters"], meta)

	spec.Title = strings.TrimSpace(rawString(raw, "title"))
	if spec.Title == "" {
		spec.Title = defaultTitle(spec.ChartType)
	}
	spec.XLabel = strings.TrimSpace(rawString(raw, "x_label"))
	if spec.XLabel == "" {
		spec.XLabel = spec.XAxis
	}
	spec.YLabel = strings.TrimSpace(rawString(raw, "y_label"))
	if spec.YLabel == "" {
		if spec.YAxis != "" {
			spec.YLabel = spec.YAxis
		} else {
			spec.YLabel = "Value"
		}
	}

	spec.Customization = normalizeCustomization(raw["customization"])

	return spec, nil
}

// AsRawIntent converts a normalized spec back to the untyped form, so that
// normalization can be replayed over its own output.
func AsRawIntent(spec *ChartSpec) RawIntent {
	raw := RawIntent{
		"chart_type":  string(spec.ChartType),
		"x_axis":      spec.XAxis,
		"aggregation": string(spec.Aggregation),
		"title":       spec.Title,
		"x_label":     spec.XLabel,
		"y_label":     spec.YLabel,
		"customization": map[string]interface{}{
			"color_scheme": string(spec.Customization.ColorScheme),
			"show_legend":  spec.Customization.ShowLegend,
			"data_labels":  spec.Customization.DataLabels,
		},
	}
	if spec.YAxis != "" {
		raw["y_axis"] = spec.YAxis
	}
	if spec.ColorBy != "" {
		raw["color_by"] = spec.ColorBy
	}
	filters := make([]interface{}, 0, len(spec.Filters))
	for _, f := range spec.Filters {
		filters = append(filters, map[string]interface{}{
			"column":   f.Column,
			"operator": f.Operator,
			"value":    f.Value,
		})
	}
	raw["filters"] = filters
	return raw
}

func normalizeAggregation(value, yAxis string, meta dataset.Metadata) Aggregation {
	agg := Aggregation(strings.ToLower(strings.TrimSpace(value)))
	if agg.Valid() {
		return agg
	}
	return defaultAggregation(yAxis, meta)
}

func defaultAggregation(yAxis string, meta dataset.Metadata) Aggregation {
	if yAxis != "" && contains(meta.NumericalColumns, yAxis) {
		return AggMean
	}
	return AggCount
}

// normalizeFilters accepts the model's loosely keyed filter clauses, resolving
// key and operator synonyms and dropping anything incomplete or pointing at an
// unknown column.
func normalizeFilters(raw interface{}, meta dataset.Metadata) []FilterClause {
	filters := []FilterClause{}
	list, ok := raw.([]interface{})
	if !ok {
		return filters
	}

	for _, item := range list {
		clause, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		column, ok := firstString(clause, filterColumnKeys)
		if !ok {
			continue
		}
		resolved, ok := resolveColumn(meta, column)
		if !ok {
			continue
		}

		opRaw, ok := firstString(clause, filterOperatorKeys)
		if !ok {
			continue
		}
		op, ok := operatorSynonyms[strings.ToLower(strings.TrimSpace(opRaw))]
		if !ok {
			continue
		}

		value, ok := firstValue(clause, filterValueKeys)
		if !ok {
			continue
		}

		filters = append(filters, FilterClause{Column: resolved, Operator: op, Value: value})
	}
	return filters
}

func normalizeCustomization(raw interface{}) Customization {
	cust := Customization{
		ColorScheme: SchemeDefault,
		ShowLegend:  true,
		DataLabels:  false,
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return cust
	}
	if s, ok := m["color_scheme"].(string); ok {
		scheme := ColorScheme(strings.ToLower(strings.TrimSpace(s)))
		if scheme.Valid() {
			cust.ColorScheme = scheme
		}
	}
	if b, ok := m["show_legend"].(bool); ok {
		cust.ShowLegend = b
	}
	if b, ok := m["data_labels"].(bool); ok {
		cust.DataLabels = b
	}
	return cust
}

func defaultTitle(t ChartType) string {
	name := string(t)
	if name == "" {
		return "Chart"
	}
	return strings.ToUpper(name[:1]) + name[1:] + " Chart"
}

func rawString(raw RawIntent, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func firstString(m map[string]interface{}, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

func firstValue(m map[string]interface{}, keys []string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func hasColumn(meta dataset.Metadata, name string) bool {
	return contains(meta.Columns, name)
}

func resolveColumn(meta dataset.Metadata, name string) (string, bool) {
	if contains(meta.Columns, name) {
		return name, true
	}
	for _, c := range meta.Columns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
