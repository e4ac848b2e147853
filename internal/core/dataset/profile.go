package dataset

import (
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// Metadata summarizes a loaded table for prompt building and normalization.
type Metadata struct {
	Columns            []string               `json:"columns"`
	DTypes             map[string]string      `json:"dtypes"`
	NumericalColumns   []string               `json:"numerical_columns"`
	CategoricalColumns []string               `json:"categorical_columns"`
	DatetimeColumns    []string               `json:"datetime_columns"`
	RowCount           int                    `json:"row_count"`
	ColumnCount        int                    `json:"column_count"`
	SummaryStats       map[string]ColumnStats `json:"summary_stats"`
	NullCounts         map[string]int         `json:"null_counts"`
}

// ColumnStats mirrors the describe-style summary for a numeric column.
type ColumnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

var datetimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// Profile computes column partitions, null counts and numeric summaries.
func Profile(df dataframe.DataFrame) Metadata {
	meta := Metadata{
		Columns:            df.Names(),
		DTypes:             make(map[string]string),
		NumericalColumns:   []string{},
		CategoricalColumns: []string{},
		DatetimeColumns:    []string{},
		RowCount:           df.Nrow(),
		ColumnCount:        df.Ncol(),
		SummaryStats:       make(map[string]ColumnStats),
		NullCounts:         make(map[string]int),
	}

	for _, name := range df.Names() {
		col := df.Col(name)
		meta.DTypes[name] = string(col.Type())
		meta.NullCounts[name] = nullCount(col)

		switch col.Type() {
		case series.Int, series.Float:
			meta.NumericalColumns = append(meta.NumericalColumns, name)
			if stats, ok := summarize(col); ok {
				meta.SummaryStats[name] = stats
			}
		case series.String:
			if isDatetimeColumn(col) {
				meta.DatetimeColumns = append(meta.DatetimeColumns, name)
			} else {
				meta.CategoricalColumns = append(meta.CategoricalColumns, name)
			}
		}
		// bool columns carry a dtype tag but join no partition
	}

	return meta
}

// IsNullElem reports whether a cell should be treated as missing. gota keeps
// empty strings as valid string values, so those count as null too.
func IsNullElem(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	if e.Type() == series.String {
		return strings.TrimSpace(e.String()) == ""
	}
	return false
}

// HasColumn reports whether the frame has a column with that exact name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// ResolveColumn matches a requested column name against the frame, first
// exactly then case-insensitively. Returns the canonical name.
func ResolveColumn(df dataframe.DataFrame, name string) (string, bool) {
	if HasColumn(df, name) {
		return name, true
	}
	for _, n := range df.Names() {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// IsNumeric reports whether the named column holds int or float values.
func IsNumeric(df dataframe.DataFrame, name string) bool {
	if !HasColumn(df, name) {
		return false
	}
	t := df.Col(name).Type()
	return t == series.Int || t == series.Float
}

// ColumnSample returns up to n distinct non-null values of a column, in
// first-seen order, rendered as strings.
func ColumnSample(df dataframe.DataFrame, name string, n int) []string {
	samples := []string{}
	if !HasColumn(df, name) || n <= 0 {
		return samples
	}
	col := df.Col(name)
	seen := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if IsNullElem(e) {
			continue
		}
		v := e.String()
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		samples = append(samples, v)
		if len(samples) >= n {
			break
		}
	}
	return samples
}

func nullCount(col series.Series) int {
	count := 0
	for i := 0; i < col.Len(); i++ {
		if IsNullElem(col.Elem(i)) {
			count++
		}
	}
	return count
}

func summarize(col series.Series) (ColumnStats, bool) {
	values := make([]float64, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		values = append(values, e.Float())
	}
	if len(values) == 0 {
		return ColumnStats{}, false
	}

	sort.Float64s(values)
	stats := ColumnStats{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Min:    values[0],
		Q25:    stat.Quantile(0.25, stat.Empirical, values, nil),
		Median: stat.Quantile(0.50, stat.Empirical, values, nil),
		Q75:    stat.Quantile(0.75, stat.Empirical, values, nil),
		Max:    values[len(values)-1],
	}
	if len(values) > 1 {
		stats.Std = stat.StdDev(values, nil)
	}
	return stats, true
}

// isDatetimeColumn reports whether every non-null value parses as a date in
// one of the common layouts. Empty columns do not qualify.
func isDatetimeColumn(col series.Series) bool {
	parsed := 0
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if IsNullElem(e) {
			continue
		}
		if !parsesAsDatetime(e.String()) {
			return false
		}
		parsed++
	}
	return parsed > 0
}

func parsesAsDatetime(v string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return true
		}
	}
	return false
}
