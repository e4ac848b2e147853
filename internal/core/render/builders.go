package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"

	"github.com/chartgen/chartgen-api/internal/core/chartspec"
	"github.com/chartgen/chartgen-api/internal/core/dataset"
)

const (
	chartWidth  = "100%"
	chartHeight = "500px"

	histogramBins = 20
)

var palettes = map[chartspec.ColorScheme][]string{
	chartspec.SchemeViridis: {
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
	},
	chartspec.SchemePlasma: {
		"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
		"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
	},
	chartspec.SchemeCoolwarm: {
		"#3b4cc0", "#6788ee", "#9abbff", "#c9d7f0",
		"#edd1c2", "#f7a889", "#e26952", "#b40426",
	},
}

// divergingColors is a red-to-blue scale for correlation heatmaps.
var divergingColors = []string{
	"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7",
	"#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061",
}

// globalOptions builds the option set shared by every chart type.
func globalOptions(spec *chartspec.ChartSpec) []charts.GlobalOpts {
	options := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{
			Title: spec.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(spec.Customization.ShowLegend),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
	}
	if colors, ok := palettes[spec.Customization.ColorScheme]; ok {
		options = append(options, charts.WithColorsOpts(opts.Colors(colors)))
	}
	return options
}

func cartesianAxes(xLabel, xType, yLabel string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{
			Name: xLabel,
			Type: xType,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: yLabel,
			Type: "value",
		}),
	}
}

func labelOptions(spec *chartspec.ChartSpec) []charts.SeriesOpts {
	if !spec.Customization.DataLabels {
		return nil
	}
	return []charts.SeriesOpts{
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "top",
		}),
	}
}

// chartValue keeps NaN out of serialized chart data.
func chartValue(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// floatColumn renders a column as float64 with NaN for nulls and
// non-numeric cells.
func floatColumn(df dataframe.DataFrame, name string) []float64 {
	col := df.Col(name)
	values := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if dataset.IsNullElem(e) {
			values[i] = math.NaN()
			continue
		}
		values[i] = e.Float()
	}
	return values
}

// valueCounts tallies distinct non-null values of a column in first-seen
// order.
func valueCounts(df dataframe.DataFrame, name string) ([]string, []int) {
	col := df.Col(name)
	labels := []string{}
	counts := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if dataset.IsNullElem(e) {
			continue
		}
		v := e.String()
		if _, seen := counts[v]; !seen {
			labels = append(labels, v)
		}
		counts[v]++
	}
	ordered := make([]int, len(labels))
	for i, l := range labels {
		ordered[i] = counts[l]
	}
	return labels, ordered
}

// seriesGroup is one color_by partition of aligned values, with NaN marking
// categories the group has no row for.
type seriesGroup struct {
	name   string
	values []float64
}

// groupByColor splits y values into per-color series aligned on the distinct
// x categories, both in first-seen order. The third result counts rows that
// landed on an already filled (x, color) slot and replaced its value, which
// only happens when the data was not aggregated.
func groupByColor(df dataframe.DataFrame, spec *chartspec.ChartSpec) ([]string, []seriesGroup, int) {
	xCol := df.Col(spec.XAxis)
	colorCol := df.Col(spec.ColorBy)
	yValues := floatColumn(df, spec.YAxis)

	categories := []string{}
	catIndex := map[string]int{}
	groups := []seriesGroup{}
	groupIndex := map[string]int{}

	for i := 0; i < df.Nrow(); i++ {
		x := xCol.Elem(i).String()
		if _, ok := catIndex[x]; !ok {
			catIndex[x] = len(categories)
			categories = append(categories, x)
		}
		c := colorCol.Elem(i).String()
		if _, ok := groupIndex[c]; !ok {
			groupIndex[c] = len(groups)
			groups = append(groups, seriesGroup{name: c})
		}
	}
	for gi := range groups {
		groups[gi].values = make([]float64, len(categories))
		for i := range groups[gi].values {
			groups[gi].values[i] = math.NaN()
		}
	}
	overwrites := 0
	for i := 0; i < df.Nrow(); i++ {
		x := xCol.Elem(i).String()
		c := colorCol.Elem(i).String()
		slot := &groups[groupIndex[c]].values[catIndex[x]]
		if !math.IsNaN(*slot) {
			overwrites++
		}
		*slot = yValues[i]
	}
	return categories, groups, overwrites
}

func warnOverwrites(overwrites int, warnings *[]string) {
	if overwrites > 0 && warnings != nil {
		*warnings = append(*warnings, fmt.Sprintf("%d rows shared an x and color value and only the last of each was charted", overwrites))
	}
}

func hasColorGrouping(df dataframe.DataFrame, spec *chartspec.ChartSpec) bool {
	return spec.ColorBy != "" && spec.ColorBy != spec.XAxis && dataset.HasColumn(df, spec.ColorBy)
}

func buildBar(df dataframe.DataFrame, spec *chartspec.ChartSpec, warnings *[]string) (renderableChart, error) {
	bar := charts.NewBar()

	if spec.YAxis == "" {
		// no measure: horizontal bars of category counts
		labels, counts := valueCounts(df, spec.XAxis)
		data := make([]opts.BarData, len(counts))
		for i, c := range counts {
			data[i] = opts.BarData{Value: c}
		}
		bar.SetGlobalOptions(append(globalOptions(spec), cartesianAxes(spec.XLabel, "category", "Count")...)...)
		bar.SetXAxis(labels).AddSeries("Count", data, labelOptions(spec)...)
		bar.XYReversal()
		return bar, nil
	}

	bar.SetGlobalOptions(append(globalOptions(spec), cartesianAxes(spec.XLabel, "category", spec.YLabel)...)...)

	if hasColorGrouping(df, spec) {
		categories, groups, overwrites := groupByColor(df, spec)
		warnOverwrites(overwrites, warnings)
		bar.SetXAxis(categories)
		for _, g := range groups {
			data := make([]opts.BarData, len(g.values))
			for i, v := range g.values {
				data[i] = opts.BarData{Value: chartValue(v)}
			}
			bar.AddSeries(g.name, data, labelOptions(spec)...)
		}
		return bar, nil
	}

	labels := df.Col(spec.XAxis).Records()
	values := floatColumn(df, spec.YAxis)
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: chartValue(v)}
	}
	bar.SetXAxis(labels).AddSeries(spec.YAxis, data, labelOptions(spec)...)
	return bar, nil
}

func buildLine(df dataframe.DataFrame, spec *chartspec.ChartSpec, filled bool, warnings *[]string) (renderableChart, error) {
	if spec.YAxis == "" {
		return nil, fmt.Errorf("%w: %s chart requires a y_axis", ErrRender, spec.ChartType)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(globalOptions(spec), cartesianAxes(spec.XLabel, "category", spec.YLabel)...)...)

	seriesOpts := append(labelOptions(spec),
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(true),
		}),
	)
	if filled {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
			Opacity: 0.4,
		}))
	}

	if hasColorGrouping(df, spec) {
		categories, groups, overwrites := groupByColor(df, spec)
		warnOverwrites(overwrites, warnings)
		line.SetXAxis(categories)
		for _, g := range groups {
			data := make([]opts.LineData, len(g.values))
			for i, v := range g.values {
				data[i] = opts.LineData{Value: chartValue(v)}
			}
			line.AddSeries(g.name, data, seriesOpts...)
		}
		return line, nil
	}

	labels := df.Col(spec.XAxis).Records()
	values := floatColumn(df, spec.YAxis)
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: chartValue(v)}
	}
	line.SetXAxis(labels).AddSeries(spec.YAxis, data, seriesOpts...)
	return line, nil
}

func buildScatter(df dataframe.DataFrame, spec *chartspec.ChartSpec) (renderableChart, error) {
	if spec.YAxis == "" {
		return nil, fmt.Errorf("%w: scatter chart requires a y_axis", ErrRender)
	}

	scatter := charts.NewScatter()
	numericX := dataset.IsNumeric(df, spec.XAxis)

	xType := "category"
	if numericX {
		xType = "value"
	}
	scatter.SetGlobalOptions(append(globalOptions(spec), cartesianAxes(spec.XLabel, xType, spec.YLabel)...)...)

	xValues := floatColumn(df, spec.XAxis)
	yValues := floatColumn(df, spec.YAxis)
	xRecords := df.Col(spec.XAxis).Records()

	// a category axis aligns bare series values by index, so categorical x
	// points carry their category index explicitly
	categories := []string{}
	catIndex := map[string]int{}
	if !numericX {
		for _, x := range xRecords {
			if _, ok := catIndex[x]; !ok {
				catIndex[x] = len(categories)
				categories = append(categories, x)
			}
		}
		scatter.SetXAxis(categories)
	}

	pointFor := func(i int) opts.ScatterData {
		if numericX {
			return opts.ScatterData{Value: []interface{}{chartValue(xValues[i]), chartValue(yValues[i])}}
		}
		return opts.ScatterData{Value: []interface{}{catIndex[xRecords[i]], chartValue(yValues[i])}}
	}

	if hasColorGrouping(df, spec) {
		colorCol := df.Col(spec.ColorBy)
		grouped := map[string][]opts.ScatterData{}
		order := []string{}
		for i := 0; i < df.Nrow(); i++ {
			c := colorCol.Elem(i).String()
			if _, ok := grouped[c]; !ok {
				order = append(order, c)
			}
			grouped[c] = append(grouped[c], pointFor(i))
		}
		for _, name := range order {
			scatter.AddSeries(name, grouped[name], labelOptions(spec)...)
		}
		return scatter, nil
	}

	data := make([]opts.ScatterData, df.Nrow())
	for i := range data {
		data[i] = pointFor(i)
	}
	scatter.AddSeries(spec.YAxis, data, labelOptions(spec)...)
	return scatter, nil
}

func buildPie(df dataframe.DataFrame, spec *chartspec.ChartSpec) (renderableChart, error) {
	labels, counts := valueCounts(df, spec.XAxis)
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no values for pie chart", ErrRender)
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(spec)...)

	data := make([]opts.PieData, len(labels))
	for i, l := range labels {
		data[i] = opts.PieData{Name: l, Value: counts[i]}
	}

	seriesOpts := []charts.SeriesOpts{}
	if spec.Customization.DataLabels {
		seriesOpts = append(seriesOpts, charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {c}",
		}))
	}
	pie.AddSeries(spec.XAxis, data, seriesOpts...)
	return pie, nil
}

func buildHeatmap(df dataframe.DataFrame, spec *chartspec.ChartSpec) (renderableChart, error) {
	meta := dataset.Profile(df)
	numeric := meta.NumericalColumns
	if len(numeric) < 2 {
		return nil, fmt.Errorf("%w: heatmap requires at least 2 numerical columns, found %d", ErrRender, len(numeric))
	}

	columns := make([][]float64, len(numeric))
	for i, name := range numeric {
		columns[i] = floatColumn(df, name)
	}

	data := []opts.HeatMapData{}
	for i := range numeric {
		for j := range numeric {
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{i, j, correlation(columns[i], columns[j])},
			})
		}
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(append(globalOptions(spec),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      numeric,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange: &opts.VisualMapInRange{
				Color: divergingColors,
			},
		}),
	)...)
	heatmap.SetXAxis(numeric).AddSeries("correlation", data)
	return heatmap, nil
}

// correlation is the Pearson coefficient over rows where both columns hold
// numbers. Degenerate inputs produce 0 rather than NaN.
func correlation(a, b []float64) float64 {
	xs := []float64{}
	ys := []float64{}
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return math.Round(r*10000) / 10000
}

func buildHistogram(df dataframe.DataFrame, spec *chartspec.ChartSpec, warnings *[]string) (renderableChart, error) {
	values, dropped := numericValues(df, spec.XAxis)
	if dropped > 0 && len(values) > 0 {
		*warnings = append(*warnings, fmt.Sprintf("%d non-numeric values in %q dropped from histogram", dropped, spec.XAxis))
	}

	column := spec.XAxis
	if len(values) == 0 {
		fallback := ""
		for _, name := range dataset.Profile(df).NumericalColumns {
			if name != spec.XAxis {
				fallback = name
				break
			}
		}
		if fallback == "" {
			return nil, fmt.Errorf("%w: no numeric data available for histogram", ErrRender)
		}
		values, _ = numericValues(df, fallback)
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: no numeric data available for histogram", ErrRender)
		}
		*warnings = append(*warnings, fmt.Sprintf("column %q is not numeric, histogram uses %q instead", spec.XAxis, fallback))
		column = fallback
	}

	labels, counts := binValues(values, histogramBins)

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalOptions(spec), cartesianAxes(column, "category", "Frequency")...)...)

	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(labels).AddSeries("Frequency", data,
		append(labelOptions(spec), charts.WithBarChartOpts(opts.BarChart{
			BarCategoryGap: "0%",
		}))...,
	)
	return bar, nil
}

// numericValues coerces a column to floats, counting values that are neither
// numbers nor numeric strings.
func numericValues(df dataframe.DataFrame, name string) ([]float64, int) {
	if !dataset.HasColumn(df, name) {
		return nil, 0
	}
	col := df.Col(name)
	values := []float64{}
	dropped := 0
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if dataset.IsNullElem(e) {
			continue
		}
		f := e.Float()
		if math.IsNaN(f) {
			if parsed, err := strconv.ParseFloat(e.String(), 64); err == nil {
				f = parsed
			} else {
				dropped++
				continue
			}
		}
		values = append(values, f)
	}
	return values, dropped
}

func binValues(values []float64, bins int) ([]string, []int) {
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return []string{formatBinEdge(min)}, []int{len(values)}
	}

	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	labels := make([]string, bins)
	for i := 0; i < bins; i++ {
		lo := min + float64(i)*width
		labels[i] = fmt.Sprintf("%s to %s", formatBinEdge(lo), formatBinEdge(lo+width))
	}
	return labels, counts
}

func formatBinEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func buildBox(df dataframe.DataFrame, spec *chartspec.ChartSpec) (renderableChart, error) {
	if spec.YAxis == "" {
		return nil, fmt.Errorf("%w: box chart requires a y_axis", ErrRender)
	}

	categoryCol := spec.XAxis
	if spec.ColorBy != "" && dataset.HasColumn(df, spec.ColorBy) {
		categoryCol = spec.ColorBy
	}

	catCol := df.Col(categoryCol)
	yValues := floatColumn(df, spec.YAxis)

	categories := []string{}
	grouped := map[string][]float64{}
	for i := 0; i < df.Nrow(); i++ {
		if math.IsNaN(yValues[i]) {
			continue
		}
		c := catCol.Elem(i).String()
		if _, ok := grouped[c]; !ok {
			categories = append(categories, c)
		}
		grouped[c] = append(grouped[c], yValues[i])
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no numeric values in %q for box chart", ErrRender, spec.YAxis)
	}

	data := make([]opts.BoxPlotData, len(categories))
	for i, c := range categories {
		data[i] = opts.BoxPlotData{Value: fiveNumberSummary(grouped[c])}
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(append(globalOptions(spec), cartesianAxes(categoryCol, "category", spec.YLabel)...)...)
	box.SetXAxis(categories).AddSeries(spec.YAxis, data)
	return box, nil
}

// fiveNumberSummary computes [min, q1, median, q3, max].
func fiveNumberSummary(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return []float64{
		sorted[0],
		stat.Quantile(0.25, stat.Empirical, sorted, nil),
		stat.Quantile(0.50, stat.Empirical, sorted, nil),
		stat.Quantile(0.75, stat.Empirical, sorted, nil),
		sorted[len(sorted)-1],
	}
}
