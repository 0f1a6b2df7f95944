// Package entity defines the domain entities for the prediction feature.
package entity

import "strconv"

// Flag is a yes/no agronomic input encoded as 0 or 1 for the model.
type Flag int

const (
	FlagNo  Flag = 0
	FlagYes Flag = 1
)

// Label returns the display label of the flag.
func (f Flag) Label() string {
	if f == FlagYes {
		return "Yes"
	}
	return "No"
}

// Valid reports whether f is 0 or 1.
func (f Flag) Valid() bool {
	return f == FlagNo || f == FlagYes
}

// AllFlags returns the selectable flag values in display order.
func AllFlags() []Flag {
	return []Flag{FlagNo, FlagYes}
}

// Crop is the categorical crop code expected by the model.
type Crop int

const (
	CropCotton Crop = iota
	CropRice
	CropBarley
	CropSoybean
	CropWheat
	CropMaize
)

// Label returns the display name of the crop.
func (c Crop) Label() string {
	switch c {
	case CropCotton:
		return "Cotton"
	case CropRice:
		return "Rice"
	case CropBarley:
		return "Barley"
	case CropSoybean:
		return "Soybean"
	case CropWheat:
		return "Wheat"
	case CropMaize:
		return "Maize"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the known crop codes.
func (c Crop) Valid() bool {
	return c >= CropCotton && c <= CropMaize
}

// AllCrops returns every crop code in model order.
func AllCrops() []Crop {
	return []Crop{CropCotton, CropRice, CropBarley, CropSoybean, CropWheat, CropMaize}
}

// Soil is the categorical soil code expected by the model.
type Soil int

const (
	SoilSandy Soil = iota
	SoilClay
	SoilLoam
	SoilSilt
	SoilPeaty
	SoilChalky
)

// Label returns the display name of the soil type.
func (s Soil) Label() string {
	switch s {
	case SoilSandy:
		return "Sandy"
	case SoilClay:
		return "Clay"
	case SoilLoam:
		return "Loam"
	case SoilSilt:
		return "Silt"
	case SoilPeaty:
		return "Peaty"
	case SoilChalky:
		return "Chalky"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the known soil codes.
func (s Soil) Valid() bool {
	return s >= SoilSandy && s <= SoilChalky
}

// AllSoils returns every soil code in model order.
func AllSoils() []Soil {
	return []Soil{SoilSandy, SoilClay, SoilLoam, SoilSilt, SoilPeaty, SoilChalky}
}

// FeatureRecord is the fixed set of agronomic inputs submitted for one prediction.
// It is built per request and passed to the model by value.
type FeatureRecord struct {
	RainfallMM     float64
	FertilizerUsed Flag
	IrrigationUsed Flag
	TemperatureC   float64
	DaysToHarvest  int
	Crop           Crop
	Soil           Soil
}

// FeatureNames lists the model's input columns in the order Vector emits them.
var FeatureNames = []string{
	"Rainfall_mm",
	"Fertilizer_Used",
	"Irrigation_Used",
	"Temperature_Celsius",
	"Days_to_Harvest",
	"Crop",
	"Soil_Type",
}

// Vector returns the record as the ordered 7-value row the model was trained on.
func (r FeatureRecord) Vector() []float64 {
	return []float64{
		r.RainfallMM,
		float64(r.FertilizerUsed),
		float64(r.IrrigationUsed),
		r.TemperatureC,
		float64(r.DaysToHarvest),
		float64(r.Crop),
		float64(r.Soil),
	}
}

// Detail is one labelled row of the "User Input Details" table.
type Detail struct {
	Name  string
	Value string
}

// Details returns the record with display labels, in model order.
func (r FeatureRecord) Details() []Detail {
	return []Detail{
		{Name: "Rainfall (mm)", Value: strconv.FormatFloat(r.RainfallMM, 'f', -1, 64)},
		{Name: "Fertilizer Used", Value: r.FertilizerUsed.Label()},
		{Name: "Irrigation Used", Value: r.IrrigationUsed.Label()},
		{Name: "Temperature (°C)", Value: strconv.FormatFloat(r.TemperatureC, 'f', -1, 64)},
		{Name: "Days to Harvest", Value: strconv.Itoa(r.DaysToHarvest)},
		{Name: "Crop Type", Value: r.Crop.Label()},
		{Name: "Soil Type", Value: r.Soil.Label()},
	}
}
