package entity

import (
	"fmt"
	"math"
	"strings"
)

// Band is the severity classification of a predicted yield.
type Band int

const (
	BandLow Band = iota
	BandModerate
	BandHigh
)

// String returns the display name of the band.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "Low"
	case BandModerate:
		return "Moderate"
	case BandHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// Key returns a lowercase identifier for metrics labels and JSON.
func (b Band) Key() string {
	return strings.ToLower(b.String())
}

// BandPolicy holds the yield thresholds in tons/hectare.
// Yields below LowBelow are Low, yields up to and including ModerateMax are Moderate.
type BandPolicy struct {
	LowBelow    float64
	ModerateMax float64
}

// Classify maps a yield to its band. It is a pure function of y and the thresholds.
func (p BandPolicy) Classify(y float64) Band {
	switch {
	case y < p.LowBelow:
		return BandLow
	case y <= p.ModerateMax:
		return BandModerate
	default:
		return BandHigh
	}
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// InputPolicy describes the accepted input ranges and the band thresholds of one
// page variant.
type InputPolicy struct {
	Name          string
	Rainfall      Range
	Temperature   Range
	DaysToHarvest Range
	Bands         BandPolicy
}

var (
	// GatedPolicy is used by the login-protected variant.
	GatedPolicy = InputPolicy{
		Name:          "gated",
		Rainfall:      Range{Min: 0, Max: 1000},
		Temperature:   Range{Min: 10, Max: 40},
		DaysToHarvest: Range{Min: 30, Max: 150},
		Bands:         BandPolicy{LowBelow: 2, ModerateMax: 4},
	}

	// OpenPolicy is used by the variant that starts on the home page without login.
	OpenPolicy = InputPolicy{
		Name:          "open",
		Rainfall:      Range{Min: 0, Max: 1000},
		Temperature:   Range{Min: 10, Max: 50},
		DaysToHarvest: Range{Min: 30, Max: 150},
		Bands:         BandPolicy{LowBelow: 2, ModerateMax: 5},
	}
)

// FieldError reports one out-of-range input.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors collects every invalid field of a FeatureRecord.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid feature record: " + strings.Join(parts, "; ")
}

// Validate checks r against the policy's ranges and the closed enumerations.
// It returns nil or a ValidationErrors value.
func (p InputPolicy) Validate(r FeatureRecord) error {
	var errs ValidationErrors
	checkRange := func(field string, v float64, rg Range) {
		if math.IsNaN(v) || !rg.Contains(v) {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("must be between %g and %g", rg.Min, rg.Max)})
		}
	}

	checkRange("rainfall_mm", r.RainfallMM, p.Rainfall)
	checkRange("temperature_c", r.TemperatureC, p.Temperature)
	checkRange("days_to_harvest", float64(r.DaysToHarvest), p.DaysToHarvest)
	if !r.FertilizerUsed.Valid() {
		errs = append(errs, FieldError{Field: "fertilizer_used", Message: "must be 0 or 1"})
	}
	if !r.IrrigationUsed.Valid() {
		errs = append(errs, FieldError{Field: "irrigation_used", Message: "must be 0 or 1"})
	}
	if !r.Crop.Valid() {
		errs = append(errs, FieldError{Field: "crop", Message: "unknown crop code"})
	}
	if !r.Soil.Valid() {
		errs = append(errs, FieldError{Field: "soil", Message: "unknown soil code"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PolicyByName returns the preset policy for a variant name.
func PolicyByName(name string) (InputPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", GatedPolicy.Name:
		return GatedPolicy, nil
	case OpenPolicy.Name:
		return OpenPolicy, nil
	default:
		return InputPolicy{}, fmt.Errorf("unknown app variant %q", name)
	}
}
