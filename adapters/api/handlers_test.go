package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"climindex/adapters/stats/kernels"
	"climindex/adapters/stats/percentile"
	"climindex/app"
	"climindex/domain/grid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	service := app.NewIndiceService(kernels.New(), percentile.New(), app.ServiceConfig{
		OutUnit:       grid.UnitDays,
		FillValue:     1e20,
		BatchCapacity: 2,
	}, nil)
	return NewServer(service, 5*time.Second, nil)
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHandleValidate(t *testing.T) {
	s := newTestServer()

	rec := post(t, s, "/v1/indices/validate", `{
		"indice": {"indice_name": "su", "calc_operation": "nb_events", "logical_operation": "gt", "thresh": 25},
		"variables": ["tasmax"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ok ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)

	rec = post(t, s, "/v1/indices/validate", `{
		"indice": {"indice_name": "su", "calc_operation": "nb_events"},
		"variables": ["tasmax"]
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var fail ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fail))
	assert.Equal(t, "VALIDATION_ERROR", fail.Code)
	assert.ElementsMatch(t, []string{"logical_operation", "thresh"}, fail.Params)
}

func TestHandleValidateMalformedBody(t *testing.T) {
	rec := post(t, newTestServer(), "/v1/indices/validate", `{"indice": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestHandleResolve(t *testing.T) {
	rec := post(t, newTestServer(), "/v1/indices/resolve", `{
		"indice": {
			"indice_name": "hot_wet", "calc_operation": "nb_events",
			"logical_operation": ["gt", "get"], "thresh": [30, 5],
			"link_logical_operations": "or"
		},
		"variables": ["tasmax", "pr"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "multivariable", body["type"])
	assert.Equal(t, []interface{}{"tasmax", "pr"}, body["variables"])
}

func TestHandleCompute(t *testing.T) {
	rec := post(t, newTestServer(), "/v1/indices/compute", `{
		"indice": {"indice_name": "csu", "calc_operation": "max_nb_consecutive_events", "logical_operation": "gt", "thresh": 25, "date_event": true},
		"variables": ["tasmax"],
		"arrays": {"tasmax": [[26], [27], [20], [28], [29], [30]]},
		"time_axis": ["2001-07-01", "2001-07-02", "2001-07-03", "2001-07-04", "2001-07-05", "2001-07-06"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var comp struct {
		Manifest struct {
			RunID      string `json:"run_id"`
			IndiceName string `json:"indice_name"`
		} `json:"manifest"`
		Result grid.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comp))
	assert.Equal(t, "csu", comp.Manifest.IndiceName)
	assert.NotEmpty(t, comp.Manifest.RunID)
	assert.Equal(t, []float64{3}, comp.Result.Values)
	require.Len(t, comp.Result.Events, 1)
	assert.Equal(t, 3, comp.Result.Events[0].Start)
	assert.Equal(t, 5, comp.Result.Events[0].End)
}

func TestHandleComputeShapeError(t *testing.T) {
	rec := post(t, newTestServer(), "/v1/indices/compute", `{
		"indice": {"indice_name": "txx", "calc_operation": "max"},
		"variables": ["tasmax"],
		"arrays": {"tasmax": [[1, 2], [3]]}
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT_SHAPE")
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
