package dto

import "crop_yield/internal/feature/prediction/domain/entity"

// RecommendationRes is one piece of guidance.
type RecommendationRes struct {
	Topic  string `json:"topic"`
	Detail string `json:"detail"`
}

// AdvisoryRes is the guidance for the predicted band.
type AdvisoryRes struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Reasons         []string            `json:"reasons,omitempty"`
	Recommendations []RecommendationRes `json:"recommendations"`
}

// InputDetailRes is one labelled input value.
type InputDetailRes struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PredictRes is the response of POST /api/v1/predict.
type PredictRes struct {
	Yield    float64          `json:"yield"`
	Display  string           `json:"display"`
	Band     string           `json:"band"`
	Advisory AdvisoryRes      `json:"advisory"`
	Input    []InputDetailRes `json:"input"`
}

// FieldErrorRes reports one invalid input.
type FieldErrorRes struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorRes is the error body of the JSON API.
type ErrorRes struct {
	Error  string          `json:"error"`
	Fields []FieldErrorRes `json:"fields,omitempty"`
}

// NewPredictRes builds the API response from an assessment and the submitted record.
func NewPredictRes(a entity.Assessment, rec entity.FeatureRecord, display string) PredictRes {
	recs := make([]RecommendationRes, 0, len(a.Advisory.Recommendations))
	for _, r := range a.Advisory.Recommendations {
		recs = append(recs, RecommendationRes{Topic: r.Topic, Detail: r.Detail})
	}
	details := rec.Details()
	input := make([]InputDetailRes, 0, len(details))
	for _, d := range details {
		input = append(input, InputDetailRes{Name: d.Name, Value: d.Value})
	}
	return PredictRes{
		Yield:   a.Yield,
		Display: display,
		Band:    a.Band.Key(),
		Advisory: AdvisoryRes{
			Title:           a.Advisory.Title,
			Description:     a.Advisory.Description,
			Reasons:         a.Advisory.Reasons,
			Recommendations: recs,
		},
		Input: input,
	}
}

// NewFieldErrors converts validation failures to the wire format.
func NewFieldErrors(errs entity.ValidationErrors) []FieldErrorRes {
	out := make([]FieldErrorRes, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldErrorRes{Field: fe.Field, Message: fe.Message})
	}
	return out
}
