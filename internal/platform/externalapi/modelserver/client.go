package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"crop_yield/internal/feature/prediction/domain/entity"
	"crop_yield/internal/feature/prediction/usecase"
	"crop_yield/internal/platform/externalapi/modelserver/dto"
)

// ErrNotConfigured is returned when no model server URL is set.
var ErrNotConfigured = errors.New("modelserver: MODEL_BASE_URL is not set")

// ModelServer is the usecase.Model implementation backed by a remote model server.
type ModelServer struct {
	cfg    Config
	client *http.Client
}

// Compile-time check to ensure ModelServer implements usecase.Model.
var _ usecase.Model = (*ModelServer)(nil)

// NewModelServer creates a new instance of ModelServer with the given config and HTTP client.
func NewModelServer(cfg Config, client *http.Client) *ModelServer {
	return &ModelServer{cfg: cfg, client: client}
}

// Predict sends one feature row to the model server and returns its single prediction.
func (m *ModelServer) Predict(ctx context.Context, features entity.FeatureRecord) (float64, error) {
	if m.cfg.BaseURL == "" {
		return 0, ErrNotConfigured
	}

	body, err := json.Marshal(dto.PredictRequest{
		Model:     m.cfg.ModelName,
		Columns:   entity.FeatureNames,
		Instances: [][]float64{features.Vector()},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return 0, fmt.Errorf("modelserver http %d", res.StatusCode)
	}

	var out dto.PredictResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode predict response: %w", err)
	}
	if out.Error != "" {
		return 0, fmt.Errorf("modelserver: %s", out.Error)
	}
	if len(out.Predictions) != 1 {
		return 0, fmt.Errorf("modelserver: expected 1 prediction, got %d", len(out.Predictions))
	}
	return out.Predictions[0], nil
}
