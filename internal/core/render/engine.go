package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/chartgen/chartgen-api/internal/core/chartspec"
	"github.com/chartgen/chartgen-api/internal/core/dataset"
	"github.com/chartgen/chartgen-api/internal/shared/utils"
)

// ErrRender marks a chart that cannot be produced from the given data.
var ErrRender = errors.New("chart rendering failed")

// Result carries a rendered chart in both embeddable forms plus any
// warnings accumulated while preparing the data.
type Result struct {
	Spec     *chartspec.ChartSpec
	HTML     string
	JSON     map[string]interface{}
	Warnings []string
}

// renderableChart is the slice of the go-echarts chart surface the engine
// needs. Every chart family satisfies it through BaseConfiguration.
type renderableChart interface {
	Render(w io.Writer) error
	JSON() map[string]interface{}
}

// Engine turns a normalized chart spec plus a dataframe into a Result.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Render runs the full pipeline: filter, aggregate, prepare, build, serialize.
// Filter clauses that cannot be applied and aggregation failures degrade to
// warnings; structural problems (no rows, unusable columns) fail.
func (e *Engine) Render(df dataframe.DataFrame, spec *chartspec.ChartSpec) (*Result, error) {
	if !spec.ChartType.Valid() {
		return nil, fmt.Errorf("%w: unsupported chart type %q", ErrRender, spec.ChartType)
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("%w: data is empty", ErrRender)
	}

	warnings := []string{}

	filtered := e.applyFilters(df, spec.Filters, &warnings)
	if filtered.Nrow() == 0 {
		return nil, fmt.Errorf("%w: no data matches the specified filters", ErrRender)
	}

	working := filtered
	if e.wantsAggregation(spec) {
		aggregated, err := e.applyAggregation(working, spec)
		if err != nil {
			utils.LogWarn("aggregation failed, charting unaggregated data", map[string]interface{}{
				"aggregation": spec.Aggregation,
				"error":       err.Error(),
			})
			warnings = append(warnings, fmt.Sprintf("aggregation %q failed: %v", spec.Aggregation, err))
		} else {
			working = aggregated
		}
	}

	// heatmap and histogram pick their own columns from the filtered frame
	if spec.ChartType != chartspec.ChartHeatmap && spec.ChartType != chartspec.ChartHistogram {
		prepared, err := e.prepareColumns(working, spec)
		if err != nil {
			return nil, err
		}
		working = prepared
	}

	chart, err := e.buildChart(working, filtered, spec, &warnings)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	if err := chart.Render(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	return &Result{
		Spec:     spec,
		HTML:     buf.String(),
		JSON:     chart.JSON(),
		Warnings: warnings,
	}, nil
}

var comparators = map[string]series.Comparator{
	"==": series.Eq,
	"!=": series.Neq,
	">":  series.Greater,
	">=": series.GreaterEq,
	"<":  series.Less,
	"<=": series.LessEq,
}

// applyFilters evaluates the filter clauses in order. A clause referencing an
// unknown column or failing to evaluate is skipped with a warning rather than
// aborting the chart.
func (e *Engine) applyFilters(df dataframe.DataFrame, filters []chartspec.FilterClause, warnings *[]string) dataframe.DataFrame {
	frame := df
	for _, clause := range filters {
		column, ok := dataset.ResolveColumn(frame, clause.Column)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("filter on unknown column %q skipped", clause.Column))
			continue
		}
		comparator, ok := comparators[clause.Operator]
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("filter with unknown operator %q skipped", clause.Operator))
			continue
		}
		next := frame.Filter(dataframe.F{
			Colname:    column,
			Comparator: comparator,
			Comparando: clause.Value,
		})
		if next.Err != nil {
			*warnings = append(*warnings, fmt.Sprintf("filter on %q skipped: %v", column, next.Err))
			continue
		}
		frame = next
	}
	return frame
}

func (e *Engine) wantsAggregation(spec *chartspec.ChartSpec) bool {
	if spec.Aggregation == chartspec.AggNone {
		return false
	}
	if spec.XAxis == "" || spec.YAxis == "" {
		return false
	}
	// heatmap and histogram never chart an (x, y) pair; every other type
	// aggregates whenever both axes are set
	switch spec.ChartType {
	case chartspec.ChartHeatmap, chartspec.ChartHistogram:
		return false
	}
	return true
}

var aggregationTypes = map[chartspec.Aggregation]dataframe.AggregationType{
	chartspec.AggSum:  dataframe.Aggregation_SUM,
	chartspec.AggMean: dataframe.Aggregation_MEAN,
	chartspec.AggMin:  dataframe.Aggregation_MIN,
	chartspec.AggMax:  dataframe.Aggregation_MAX,
}

// applyAggregation groups by x (and color_by when present) and collapses the
// y column with the requested aggregate, keeping the y column name stable.
func (e *Engine) applyAggregation(df dataframe.DataFrame, spec *chartspec.ChartSpec) (dataframe.DataFrame, error) {
	if spec.YAxis == spec.XAxis {
		return df, fmt.Errorf("cannot aggregate %q grouped by itself", spec.YAxis)
	}

	groupCols := []string{spec.XAxis}
	if spec.ColorBy != "" && spec.ColorBy != spec.XAxis {
		groupCols = append(groupCols, spec.ColorBy)
	}

	// count is the group's row cardinality, regardless of what the y cells hold
	if spec.Aggregation == chartspec.AggCount {
		return countGroups(df, groupCols, spec.YAxis)
	}

	aggType, ok := aggregationTypes[spec.Aggregation]
	if !ok {
		return df, fmt.Errorf("unknown aggregation %q", spec.Aggregation)
	}
	if !dataset.IsNumeric(df, spec.YAxis) {
		return df, fmt.Errorf("aggregation %q requires a numeric y_axis, %q is not", spec.Aggregation, spec.YAxis)
	}

	groups := df.GroupBy(groupCols...)
	if groups.Err != nil {
		return df, groups.Err
	}

	aggregated := groups.Aggregation([]dataframe.AggregationType{aggType}, []string{spec.YAxis})
	if aggregated.Err != nil {
		return df, aggregated.Err
	}

	// gota suffixes the aggregated column with the aggregation name
	for _, name := range aggregated.Names() {
		if name != spec.YAxis && strings.HasPrefix(name, spec.YAxis+"_") {
			aggregated = aggregated.Rename(spec.YAxis, name)
			break
		}
	}
	if aggregated.Err != nil {
		return df, aggregated.Err
	}
	return aggregated, nil
}

// countGroups builds a frame of row counts per group key combination, in
// first-seen order, with the count stored under the y column name.
func countGroups(df dataframe.DataFrame, groupCols []string, yName string) (dataframe.DataFrame, error) {
	keyCols := make([]series.Series, len(groupCols))
	for i, name := range groupCols {
		keyCols[i] = df.Col(name)
	}

	order := []string{}
	keyValues := map[string][]string{}
	counts := map[string]int{}
	for i := 0; i < df.Nrow(); i++ {
		values := make([]string, len(keyCols))
		for j, col := range keyCols {
			values[j] = col.Elem(i).String()
		}
		key := strings.Join(values, "\x00")
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			keyValues[key] = values
		}
		counts[key]++
	}

	records := [][]string{append(append([]string{}, groupCols...), yName)}
	for _, key := range order {
		row := append(append([]string{}, keyValues[key]...), strconv.Itoa(counts[key]))
		records = append(records, row)
	}

	counted := dataframe.LoadRecords(records)
	if counted.Err != nil {
		return df, counted.Err
	}
	return counted, nil
}

// prepareColumns narrows the frame to the columns the chart uses, dropping
// all-null columns and rows with any null in the kept columns.
func (e *Engine) prepareColumns(df dataframe.DataFrame, spec *chartspec.ChartSpec) (dataframe.DataFrame, error) {
	wanted := []string{}
	seen := map[string]struct{}{}
	for _, name := range []string{spec.XAxis, spec.YAxis, spec.ColorBy} {
		if name == "" || !dataset.HasColumn(df, name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		wanted = append(wanted, name)
	}
	if len(wanted) == 0 {
		return df, fmt.Errorf("%w: no usable columns for chart", ErrRender)
	}

	kept := []string{}
	for _, name := range wanted {
		col := df.Col(name)
		nulls := 0
		for i := 0; i < col.Len(); i++ {
			if dataset.IsNullElem(col.Elem(i)) {
				nulls++
			}
		}
		if nulls < col.Len() {
			kept = append(kept, name)
		}
	}
	if len(kept) == 0 {
		return df, fmt.Errorf("%w: selected columns contain no data", ErrRender)
	}

	selected := df.Select(kept)
	if selected.Err != nil {
		return df, fmt.Errorf("%w: %v", ErrRender, selected.Err)
	}

	// only rows that are null across every selected column are dropped;
	// partial rows survive and chart as gaps
	rows := []int{}
	for i := 0; i < selected.Nrow(); i++ {
		for j := 0; j < selected.Ncol(); j++ {
			if !dataset.IsNullElem(selected.Elem(i, j)) {
				rows = append(rows, i)
				break
			}
		}
	}
	if len(rows) == 0 {
		return df, fmt.Errorf("%w: no rows left after removing nulls", ErrRender)
	}
	if len(rows) == selected.Nrow() {
		return selected, nil
	}

	subset := selected.Subset(rows)
	if subset.Err != nil {
		return df, fmt.Errorf("%w: %v", ErrRender, subset.Err)
	}
	return subset, nil
}

// buildChart dispatches to the per-type builder. base is the filtered frame
// before column preparation, used by builders that scan for columns
// themselves.
func (e *Engine) buildChart(df, base dataframe.DataFrame, spec *chartspec.ChartSpec, warnings *[]string) (renderableChart, error) {
	switch spec.ChartType {
	case chartspec.ChartBar:
		return buildBar(df, spec, warnings)
	case chartspec.ChartLine:
		return buildLine(df, spec, false, warnings)
	case chartspec.ChartArea:
		return buildLine(df, spec, true, warnings)
	case chartspec.ChartScatter:
		return buildScatter(df, spec)
	case chartspec.ChartPie:
		return buildPie(df, spec)
	case chartspec.ChartHeatmap:
		return buildHeatmap(base, spec)
	case chartspec.ChartHistogram:
		return buildHistogram(base, spec, warnings)
	case chartspec.ChartBox:
		return buildBox(df, spec)
	default:
		return nil, fmt.Errorf("%w: unsupported chart type %q", ErrRender, spec.ChartType)
	}
}
