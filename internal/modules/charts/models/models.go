package models

import (
	"github.com/chartgen/chartgen-api/internal/core/chartspec"
	"github.com/chartgen/chartgen-api/internal/core/dataset"
)

// UploadResponse confirms a stored dataset.
type UploadResponse struct {
	SessionID   string           `json:"session_id"`
	Filename    string           `json:"filename"`
	RowCount    int              `json:"row_count"`
	ColumnCount int              `json:"column_count"`
	Columns     []string         `json:"columns"`
	Metadata    dataset.Metadata `json:"metadata"`
	Message     string           `json:"message"`
}

// SessionInfoResponse summarizes a stored session.
type SessionInfoResponse struct {
	SessionID string              `json:"session_id"`
	Filename  string              `json:"filename"`
	CreatedAt string              `json:"created_at"`
	RowCount  int                 `json:"row_count"`
	Columns   []string            `json:"columns"`
	Metadata  dataset.Metadata    `json:"metadata"`
	Samples   map[string][]string `json:"samples"`
}

// ChartGenerationRequest is the natural language chart request body.
// IncludeSpec defaults to true when omitted.
type ChartGenerationRequest struct {
	UserQuery   string `json:"user_query"`
	IncludeSpec *bool  `json:"include_spec"`
}

const (
	MinQueryLength = 10
	MaxQueryLength = 1000
)

// ChartResponse carries the rendered chart.
type ChartResponse struct {
	ChartSpec *chartspec.ChartSpec   `json:"chart_spec,omitempty"`
	ChartHTML string                 `json:"chart_html"`
	ChartJSON map[string]interface{} `json:"chart_json"`
	Warnings  []string               `json:"warnings"`
}

// SupportedTypesResponse enumerates renderable chart types.
type SupportedTypesResponse struct {
	ChartTypes   []chartspec.ChartType `json:"chart_types"`
	Aggregations []string              `json:"aggregations"`
	ColorSchemes []string              `json:"color_schemes"`
}
