// Package usecase implements the business logic for the prediction feature.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"crop_yield/internal/feature/prediction/domain/entity"
)

var (
	// ErrModelFailed wraps any error returned by the external model.
	ErrModelFailed = errors.New("model prediction failed")

	// ErrInvalidPrediction is returned when the model answers with NaN or Inf.
	ErrInvalidPrediction = errors.New("model returned a non-finite prediction")
)

// Model is the external regression model boundary.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Model interface {
	// Predict returns the yield estimate in tons/hectare for one feature record.
	Predict(ctx context.Context, features entity.FeatureRecord) (float64, error)
}

// predictionUsecase delegates to the model and classifies its output.
type predictionUsecase struct {
	model  Model
	policy entity.InputPolicy
}

// NewPredictionUsecase creates a new instance of predictionUsecase.
func NewPredictionUsecase(model Model, policy entity.InputPolicy) *predictionUsecase {
	return &predictionUsecase{model: model, policy: policy}
}

// Policy returns the input and band policy this usecase was configured with.
func (u *predictionUsecase) Policy() entity.InputPolicy {
	return u.policy
}

// Predict calls the model exactly once. Range checks are the caller's job.
// Model errors are wrapped and returned; there is no retry.
func (u *predictionUsecase) Predict(ctx context.Context, features entity.FeatureRecord) (float64, error) {
	y, err := u.model.Predict(ctx, features)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrModelFailed, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, ErrInvalidPrediction
	}
	return y, nil
}

// Assess classifies y with the configured band policy and attaches the guidance text.
func (u *predictionUsecase) Assess(y float64) entity.Assessment {
	band := u.policy.Bands.Classify(y)
	return entity.Assessment{
		Yield:    y,
		Band:     band,
		Advisory: entity.AdvisoryFor(band),
	}
}
