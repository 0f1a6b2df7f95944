package modelserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"crop_yield/internal/feature/prediction/domain/entity"
	"crop_yield/internal/platform/externalapi/modelserver/dto"
)

var testRecord = entity.FeatureRecord{
	RainfallMM:     640,
	FertilizerUsed: entity.FlagYes,
	IrrigationUsed: entity.FlagYes,
	TemperatureC:   31.5,
	DaysToHarvest:  120,
	Crop:           entity.CropBarley,
	Soil:           entity.SoilPeaty,
}

func TestNewModelServer(t *testing.T) {
	t.Parallel()

	cfg := Config{BaseURL: "http://model.test", Timeout: time.Second}
	client := &http.Client{}

	ms := NewModelServer(cfg, client)

	if ms == nil {
		t.Fatal("expected non-nil model server")
	}
	if ms.cfg.BaseURL != cfg.BaseURL {
		t.Errorf("expected base URL %q, got %q", cfg.BaseURL, ms.cfg.BaseURL)
	}
	if ms.client != client {
		t.Error("expected injected client to be used")
	}
}

func TestModelServer_Predict_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/predict" {
			t.Errorf("expected path /predict, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}

		var req dto.PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		// Field order is part of the model contract
		want := [][]float64{{640, 1, 1, 31.5, 120, 2, 4}}
		if !reflect.DeepEqual(req.Instances, want) {
			t.Errorf("expected instances %v, got %v", want, req.Instances)
		}
		if !reflect.DeepEqual(req.Columns, entity.FeatureNames) {
			t.Errorf("expected columns %v, got %v", entity.FeatureNames, req.Columns)
		}
		if req.Model != "lgbm" {
			t.Errorf("expected model name lgbm, got %q", req.Model)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":[3.75]}`))
	}))
	defer server.Close()

	ms := NewModelServer(Config{BaseURL: server.URL, ModelName: "lgbm"}, server.Client())

	y, err := ms.Predict(context.Background(), testRecord)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y != 3.75 {
		t.Errorf("expected 3.75, got %f", y)
	}
}

func TestModelServer_Predict_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad request", http.StatusBadRequest},
		{"not found", http.StatusNotFound},
		{"internal server error", http.StatusInternalServerError},
		{"service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			ms := NewModelServer(Config{BaseURL: server.URL}, server.Client())

			_, err := ms.Predict(context.Background(), testRecord)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "modelserver http") {
				t.Errorf("expected HTTP error message, got %v", err)
			}
		})
	}
}

func TestModelServer_Predict_BadResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		errPart  string
	}{
		{"invalid json", `{invalid json`, "decode predict response"},
		{"server reported error", `{"predictions":[],"error":"model not loaded"}`, "model not loaded"},
		{"no predictions", `{"predictions":[]}`, "expected 1 prediction, got 0"},
		{"too many predictions", `{"predictions":[1.0,2.0]}`, "expected 1 prediction, got 2"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			ms := NewModelServer(Config{BaseURL: server.URL}, server.Client())

			_, err := ms.Predict(context.Background(), testRecord)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("expected error containing %q, got %v", tt.errPart, err)
			}
		})
	}
}

func TestModelServer_Predict_NotConfigured(t *testing.T) {
	t.Parallel()

	ms := NewModelServer(Config{}, http.DefaultClient)

	_, err := ms.Predict(context.Background(), testRecord)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestModelServer_Predict_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ms := NewModelServer(Config{BaseURL: server.URL}, server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := ms.Predict(ctx, testRecord)
	if err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("MODEL_BASE_URL", "http://model.local:9000/")
	t.Setenv("MODEL_NAME", "best_lgbm_model")
	t.Setenv("MODEL_TIMEOUT", "15s")

	cfg := LoadConfig()

	if cfg.BaseURL != "http://model.local:9000" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.ModelName != "best_lgbm_model" {
		t.Errorf("expected model name, got %q", cfg.ModelName)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("expected timeout 15s, got %v", cfg.Timeout)
	}
}

func TestLoadConfig_DefaultsToNoTimeout(t *testing.T) {
	t.Setenv("MODEL_TIMEOUT", "")

	cfg := LoadConfig()

	if cfg.Timeout != 0 {
		t.Errorf("expected no timeout, got %v", cfg.Timeout)
	}

	t.Setenv("MODEL_TIMEOUT", "soon")
	if cfg := LoadConfig(); cfg.Timeout != 0 {
		t.Errorf("expected invalid timeout to be ignored, got %v", cfg.Timeout)
	}
}
