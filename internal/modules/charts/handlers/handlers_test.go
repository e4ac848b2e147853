package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartgen/chartgen-api/internal/core/llm"
	"github.com/chartgen/chartgen-api/internal/core/render"
	"github.com/chartgen/chartgen-api/internal/modules/charts/repositories"
	"github.com/chartgen/chartgen-api/internal/modules/charts/services"
)

const salesCSV = "region,sales\nNorth,100\nSouth,150\nNorth,120\n"

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) GetProviderName() string { return "stub" }

func newTestApp(provider llm.LLMProvider) *fiber.App {
	sessionRepo := repositories.NewSessionRepo()
	dataService := services.NewDataService(sessionRepo, 2, 100000)
	chartService := services.NewChartService(sessionRepo, llm.NewServiceWithProvider(provider), render.NewEngine())

	dataHandler := NewDataHandler(dataService, 50*1024*1024, []string{"csv", "json", "xlsx"})
	chartHandler := NewChartHandler(chartService)
	healthHandler := NewHealthHandler("Chart Generator API", "1.0.0", chartService)

	app := fiber.New()
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.GetHealth)

	data := app.Group("/api/data")
	data.Post("/upload", dataHandler.UploadDataLegacy)
	data.Post("/upload/:session_id", dataHandler.UploadData)
	data.Get("/sessions/:session_id", dataHandler.GetSession)
	data.Delete("/sessions/:session_id", dataHandler.DeleteSession)

	chartsGroup := app.Group("/api/charts")
	chartsGroup.Post("/generate/:session_id", chartHandler.GenerateChart)
	chartsGroup.Get("/supported-types", chartHandler.GetSupportedTypes)

	return app
}

func uploadRequest(t *testing.T, url, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(&stubProvider{})

	// upload
	resp, err := app.Test(uploadRequest(t, "/api/data/upload/sess-1", "sales.csv", salesCSV), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "sess-1", body["session_id"])
	assert.Equal(t, float64(3), body["row_count"])

	// fetch summary
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/data/sessions/sess-1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	assert.Equal(t, "sales.csv", body["filename"])
	samples, ok := body["samples"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, samples, "region")

	// delete
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/data/sessions/sess-1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// gone
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/data/sessions/sess-1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadLegacyGeneratesSessionID(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, err := app.Test(uploadRequest(t, "/api/data/upload", "sales.csv", salesCSV), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["session_id"])
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, err := app.Test(uploadRequest(t, "/api/data/upload/sess-1", "sales.parquet", "binary"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsTooFewRows(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, err := app.Test(uploadRequest(t, "/api/data/upload/sess-1", "one.csv", "a,b\n1,2\n"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateChart(t *testing.T) {
	app := newTestApp(&stubProvider{
		response: `{"chart_type": "bar", "x_axis": "region", "y_axis": "sales", "aggregation": "sum"}`,
	})

	resp, err := app.Test(uploadRequest(t, "/api/data/upload/sess-1", "sales.csv", salesCSV), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := `{"user_query": "show total sales by region"}`
	req := httptest.NewRequest(http.MethodPost, "/api/charts/generate/sess-1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["chart_html"], "echarts")
	assert.NotNil(t, body["chart_json"])

	spec, ok := body["chart_spec"].(map[string]interface{})
	require.True(t, ok, "chart_spec included by default")
	assert.Equal(t, "bar", spec["chart_type"])
}

func TestGenerateChartExcludesSpecWhenAsked(t *testing.T) {
	app := newTestApp(&stubProvider{
		response: `{"chart_type": "bar", "x_axis": "region"}`,
	})

	resp, err := app.Test(uploadRequest(t, "/api/data/upload/sess-1", "sales.csv", salesCSV), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := `{"user_query": "show sales by region", "include_spec": false}`
	req := httptest.NewRequest(http.MethodPost, "/api/charts/generate/sess-1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotContains(t, body, "chart_spec")
}

func TestGenerateChartUnknownSession(t *testing.T) {
	app := newTestApp(&stubProvider{response: `{"chart_type": "bar", "x_axis": "region"}`})

	req := httptest.NewRequest(http.MethodPost, "/api/charts/generate/nope", strings.NewReader(`{"user_query": "show sales by region"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateChartRejectsShortQuery(t *testing.T) {
	app := newTestApp(&stubProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/charts/generate/sess-1", strings.NewReader(`{"user_query": "hi"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateChartModelFailure(t *testing.T) {
	app := newTestApp(&stubProvider{err: llm.ErrUnavailable})

	resp, err := app.Test(uploadRequest(t, "/api/data/upload/sess-1", "sales.csv", salesCSV), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/charts/generate/sess-1", strings.NewReader(`{"user_query": "show sales by region"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGenerateChartInvalidSpec(t *testing.T) {
	app := newTestApp(&stubProvider{
		response: `{"chart_type": "bar", "x_axis": "ghost"}`,
	})

	resp, err := app.Test(uploadRequest(t, "/api/data/upload/sess-1", "sales.csv", salesCSV), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/charts/generate/sess-1", strings.NewReader(`{"user_query": "show sales by region"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSupportedTypes(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/charts/supported-types", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	types, ok := body["chart_types"].([]interface{})
	require.True(t, ok)
	assert.Len(t, types, 8)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "stub", body["llm_provider"])
}
