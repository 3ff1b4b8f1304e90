package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonnorm/internal/responses"
	"jsonnorm/internal/services"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewNormalizeHandler(services.NewNormalizeService())
	router.POST("/normalize", handler.Normalize)
	return router
}

func postNormalize(t *testing.T, router *gin.Engine, body string) (*httptest.ResponseRecorder, responses.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/normalize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp responses.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestNormalizeEndpoint(t *testing.T) {
	router := newTestRouter()

	rec, resp := postNormalize(t, router,
		`{"root_name": "Company", "document": {"name": "Acme", "employees": [{"name": "Ann"}]}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	dataset, ok := data["dataset"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Company", dataset["root"])
	assert.Contains(t, data["diagram"], "erDiagram")
}

func TestNormalizeEndpointRejectsMissingFields(t *testing.T) {
	router := newTestRouter()

	rec, resp := postNormalize(t, router, `{"document": {"a": 1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", resp.Status)

	rec, _ = postNormalize(t, router, `{"root_name": "Company"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNormalizeEndpointRejectsScalarDocument(t *testing.T) {
	router := newTestRouter()

	rec, resp := postNormalize(t, router, `{"root_name": "Company", "document": 42}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestNormalizeEndpointRejectsStructuralProblems(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"reserved field", `{"root_name": "Company", "document": {"ID": 1}}`},
		{"mixed array", `{"root_name": "Company", "document": {"xs": [1, {"a": 2}]}}`},
		{"reserved root name", `{"root_name": "id", "document": {"a": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := postNormalize(t, router, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "error", resp.Status)
		})
	}
}
