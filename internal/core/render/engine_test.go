package render

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartgen/chartgen-api/internal/core/chartspec"
)

func salesFrame(t *testing.T) dataframe.DataFrame {
	t.Helper()
	df := dataframe.ReadCSV(strings.NewReader(
		"region,sales,profit\nNorth,100,10\nSouth,150,20\nNorth,120,15\nEast,90,5\nSouth,110,12\n"))
	require.NoError(t, df.Err)
	return df
}

func baseSpec(chartType chartspec.ChartType) *chartspec.ChartSpec {
	return &chartspec.ChartSpec{
		ChartType:   chartType,
		XAxis:       "region",
		YAxis:       "sales",
		Aggregation: chartspec.AggNone,
		Title:       "Test Chart",
		XLabel:      "region",
		YLabel:      "sales",
		Customization: chartspec.Customization{
			ColorScheme: chartspec.SchemeDefault,
			ShowLegend:  true,
		},
	}
}

func TestRenderBarWithSumAggregation(t *testing.T) {
	spec := baseSpec(chartspec.ChartBar)
	spec.Aggregation = chartspec.AggSum

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)

	assert.Empty(t, result.Warnings)
	assert.Contains(t, result.HTML, "echarts")
	assert.Contains(t, result.JSON, "series")
	assert.Same(t, spec, result.Spec)

	// bar heights are the per-region sums: North 220, South 260, East 90
	for _, sum := range []string{`{"value":220}`, `{"value":260}`, `{"value":90}`} {
		assert.Contains(t, result.HTML, sum)
	}
}

func TestRenderCountAggregationCountsRows(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader("region,sales\nNorth,100\nNorth,\nSouth,90\n"))
	require.NoError(t, df.Err)

	spec := baseSpec(chartspec.ChartBar)
	spec.Aggregation = chartspec.AggCount

	result, err := NewEngine().Render(df, spec)
	require.NoError(t, err)

	// count is row cardinality per group, so North's null sales cell still counts
	assert.Contains(t, result.HTML, `{"value":2}`)
	assert.Contains(t, result.HTML, `{"value":1}`)
}

func TestRenderKeepsRowsWithPartialNulls(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader("region,sales\nNorth,100\nSouth,\nEast,90\n"))
	require.NoError(t, df.Err)

	result, err := NewEngine().Render(df, baseSpec(chartspec.ChartBar))
	require.NoError(t, err)

	// a row with a valid x and null y charts as a gap instead of vanishing
	assert.Contains(t, result.HTML, "South")
}

func TestRenderScatterAggregates(t *testing.T) {
	spec := baseSpec(chartspec.ChartScatter)
	spec.Aggregation = chartspec.AggSum

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)

	// aggregated points, not the raw rows: North's sum 220 replaces 100 and 120
	assert.Contains(t, result.HTML, ",220]")
	assert.NotContains(t, result.HTML, ",100]")
}

func TestRenderWarnsOnDuplicateColorPairs(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader(
		"region,quarter,sales\nNorth,Q1,100\nNorth,Q1,120\nSouth,Q1,90\n"))
	require.NoError(t, df.Err)

	spec := baseSpec(chartspec.ChartBar)
	spec.ColorBy = "quarter"

	result, err := NewEngine().Render(df, spec)
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "last")
}

func TestRenderBarCountsWithoutYAxis(t *testing.T) {
	spec := baseSpec(chartspec.ChartBar)
	spec.YAxis = ""
	spec.Aggregation = chartspec.AggCount

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "echarts")
}

func TestRenderUnsupportedChartType(t *testing.T) {
	spec := baseSpec("treemap")

	_, err := NewEngine().Render(salesFrame(t), spec)
	assert.ErrorIs(t, err, ErrRender)
}

func TestRenderEmptyFrame(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader("a,b\n"))

	_, err := NewEngine().Render(df, baseSpec(chartspec.ChartBar))
	assert.ErrorIs(t, err, ErrRender)
}

func TestRenderAppliesFilters(t *testing.T) {
	spec := baseSpec(chartspec.ChartBar)
	spec.Filters = []chartspec.FilterClause{
		{Column: "sales", Operator: ">=", Value: 110},
	}

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
}

func TestRenderFailsWhenFiltersRemoveEverything(t *testing.T) {
	spec := baseSpec(chartspec.ChartBar)
	spec.Filters = []chartspec.FilterClause{
		{Column: "region", Operator: "==", Value: "Nowhere"},
	}

	_, err := NewEngine().Render(salesFrame(t), spec)
	require.ErrorIs(t, err, ErrRender)
	assert.Contains(t, err.Error(), "filters")
}

func TestRenderSkipsFilterOnUnknownColumn(t *testing.T) {
	spec := baseSpec(chartspec.ChartBar)
	spec.Filters = []chartspec.FilterClause{
		{Column: "ghost", Operator: "==", Value: "x"},
	}

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "ghost")
}

func TestRenderLineAndAreaAndScatter(t *testing.T) {
	for _, chartType := range []chartspec.ChartType{
		chartspec.ChartLine, chartspec.ChartArea, chartspec.ChartScatter,
	} {
		spec := baseSpec(chartType)
		result, err := NewEngine().Render(salesFrame(t), spec)
		require.NoError(t, err, "chart type %s", chartType)
		assert.Contains(t, result.HTML, "echarts")
	}
}

func TestRenderPie(t *testing.T) {
	spec := baseSpec(chartspec.ChartPie)
	spec.YAxis = ""

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "echarts")
}

func TestRenderBoxGroupedByColor(t *testing.T) {
	spec := baseSpec(chartspec.ChartBox)
	spec.ColorBy = "region"

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "echarts")
}

func TestRenderHeatmapNeedsTwoNumericColumns(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader("region,sales\nNorth,100\nSouth,150\n"))
	require.NoError(t, df.Err)

	spec := baseSpec(chartspec.ChartHeatmap)
	_, err := NewEngine().Render(df, spec)
	require.ErrorIs(t, err, ErrRender)
	assert.Contains(t, err.Error(), "numerical columns")
}

func TestRenderHeatmapCorrelation(t *testing.T) {
	spec := baseSpec(chartspec.ChartHeatmap)

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "echarts")
	assert.Contains(t, result.JSON, "visualMap")

	// the correlation matrix diagonal is exactly 1
	assert.Contains(t, result.HTML, "[0,0,1]")
	assert.Contains(t, result.HTML, "[1,1,1]")
}

func TestRenderHistogramCoercesNumericStrings(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader("val\n1\n2\nx\n4\n"))
	require.NoError(t, df.Err)

	spec := baseSpec(chartspec.ChartHistogram)
	spec.XAxis = "val"
	spec.YAxis = ""

	result, err := NewEngine().Render(df, spec)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "dropped")
}

func TestRenderHistogramFallsBackToNumericColumn(t *testing.T) {
	spec := baseSpec(chartspec.ChartHistogram)
	spec.XAxis = "region"
	spec.YAxis = ""

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "sales")
}

func TestRenderHistogramFailsWithoutNumericData(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader("color\nred\nblue\ngreen\n"))
	require.NoError(t, df.Err)

	spec := baseSpec(chartspec.ChartHistogram)
	spec.XAxis = "color"
	spec.YAxis = ""

	_, err := NewEngine().Render(df, spec)
	require.ErrorIs(t, err, ErrRender)
	assert.Contains(t, err.Error(), "numeric")
}

func TestRenderBarGroupedByColor(t *testing.T) {
	spec := baseSpec(chartspec.ChartBar)
	spec.ColorBy = "region"
	spec.XAxis = "profit"

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "echarts")
}

func TestRenderAggregationFailureDegradesToWarning(t *testing.T) {
	spec := baseSpec(chartspec.ChartBar)
	spec.Aggregation = chartspec.AggSum
	spec.YAxis = "region" // sum over a categorical column cannot work

	result, err := NewEngine().Render(salesFrame(t), spec)
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "aggregation")
}
