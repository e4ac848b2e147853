package chartspec

// ChartType enumerates the renderable chart families.
type ChartType string

const (
	ChartBar       ChartType = "bar"
	ChartLine      ChartType = "line"
	ChartScatter   ChartType = "scatter"
	ChartPie       ChartType = "pie"
	ChartHeatmap   ChartType = "heatmap"
	ChartArea      ChartType = "area"
	ChartHistogram ChartType = "histogram"
	ChartBox       ChartType = "box"
)

// SupportedChartTypes lists every chart type the renderer accepts.
var SupportedChartTypes = []ChartType{
	ChartBar, ChartLine, ChartScatter, ChartPie,
	ChartHeatmap, ChartArea, ChartHistogram, ChartBox,
}

func (t ChartType) Valid() bool {
	for _, s := range SupportedChartTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Aggregation enumerates how y values are combined per x category.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggMean  Aggregation = "mean"
	AggCount Aggregation = "count"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
	AggNone  Aggregation = "none"
)

func (a Aggregation) Valid() bool {
	switch a {
	case AggSum, AggMean, AggCount, AggMin, AggMax, AggNone:
		return true
	}
	return false
}

// ColorScheme enumerates the built-in palettes.
type ColorScheme string

const (
	SchemeDefault  ColorScheme = "default"
	SchemeViridis  ColorScheme = "viridis"
	SchemePlasma   ColorScheme = "plasma"
	SchemeCoolwarm ColorScheme = "coolwarm"
)

func (c ColorScheme) Valid() bool {
	switch c {
	case SchemeDefault, SchemeViridis, SchemePlasma, SchemeCoolwarm:
		return true
	}
	return false
}

// FilterClause is one row filter applied before charting.
type FilterClause struct {
	Column   string      `json:"column"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Customization holds cosmetic options with renderer-side defaults.
type Customization struct {
	ColorScheme ColorScheme `json:"color_scheme"`
	ShowLegend  bool        `json:"show_legend"`
	DataLabels  bool        `json:"data_labels"`
}

// ChartSpec is the canonical, normalized chart request.
type ChartSpec struct {
	ChartType     ChartType      `json:"chart_type"`
	XAxis         string         `json:"x_axis"`
	YAxis         string         `json:"y_axis,omitempty"`
	ColorBy       string         `json:"color_by,omitempty"`
	Aggregation   Aggregation    `json:"aggregation"`
	Filters       []FilterClause `json:"filters"`
	Title         string         `json:"title"`
	XLabel        string         `json:"x_label"`
	YLabel        string         `json:"y_label"`
	Customization Customization  `json:"customization"`
}

// RawIntent is the untyped chart request as decoded from model output.
type RawIntent map[string]interface{}
