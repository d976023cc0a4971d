package container

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"climindex/adapters/stats/kernels"
	"climindex/domain/grid"
	"climindex/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "0", RequestTimeout: time.Second},
		Compute:  config.ComputeConfig{OutUnit: grid.UnitDays, FillValue: 1e20, BatchCapacity: 2},
		LogLevel: "ERROR",
	}
}

func TestNewWiresServices(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	assert.NotNil(t, c.IndiceService)
	assert.NotNil(t, c.Kernels)
	assert.NotNil(t, c.Percentiles)

	rec := httptest.NewRecorder()
	c.APIServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWithKernelsRebuildsService(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	before := c.IndiceService

	c.WithKernels(kernels.New())
	assert.NotSame(t, before, c.IndiceService)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
