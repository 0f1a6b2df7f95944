// Package dto defines data transfer objects for the model server's predict endpoint.
package dto

// PredictRequest is the JSON body sent to POST /predict.
// Each instance is one feature row in the model's column order.
type PredictRequest struct {
	Model     string      `json:"model,omitempty"`
	Columns   []string    `json:"columns"`
	Instances [][]float64 `json:"instances"`
}

// PredictResponse is the JSON body returned by POST /predict.
type PredictResponse struct {
	Predictions []float64 `json:"predictions"`
	Error       string    `json:"error,omitempty"`
}
