package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop_yield/internal/feature/prediction/domain/entity"
	"crop_yield/internal/platform/externalapi/modelserver"
)

func TestNewModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"predictions": []float64{3.5}})
	}))
	defer srv.Close()

	m := NewModel(modelserver.Config{BaseURL: srv.URL, Timeout: time.Second})

	y, err := m.Predict(context.Background(), entity.FeatureRecord{RainfallMM: 500, TemperatureC: 20, DaysToHarvest: 100})
	require.NoError(t, err)
	assert.Equal(t, 3.5, y)
}

func TestNewModel_NotConfigured(t *testing.T) {
	m := NewModel(modelserver.Config{})

	_, err := m.Predict(context.Background(), entity.FeatureRecord{})
	assert.ErrorIs(t, err, modelserver.ErrNotConfigured)
}
