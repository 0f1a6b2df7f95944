// Package dto defines data transfer objects for the prediction feature's HTTP transport layer.
package dto

import "crop_yield/internal/feature/prediction/domain/entity"

// PredictReq is the form (POST /predict) and JSON (POST /api/v1/predict) input.
// Pointers let "required" accept a literal zero. Static bounds are checked here;
// the variant-specific temperature range is checked by entity.InputPolicy.
type PredictReq struct {
	RainfallMM     *float64 `form:"rainfall_mm" json:"rainfall_mm" binding:"required,gte=0,lte=1000"`
	FertilizerUsed *int     `form:"fertilizer_used" json:"fertilizer_used" binding:"required,oneof=0 1"`
	IrrigationUsed *int     `form:"irrigation_used" json:"irrigation_used" binding:"required,oneof=0 1"`
	TemperatureC   *float64 `form:"temperature_c" json:"temperature_c" binding:"required"`
	DaysToHarvest  *int     `form:"days_to_harvest" json:"days_to_harvest" binding:"required,gte=30,lte=150"`
	Crop           *int     `form:"crop" json:"crop" binding:"required,gte=0,lte=5"`
	Soil           *int     `form:"soil" json:"soil" binding:"required,gte=0,lte=5"`
}

// FieldNames maps struct field names to their wire names for error reporting.
var FieldNames = map[string]string{
	"RainfallMM":     "rainfall_mm",
	"FertilizerUsed": "fertilizer_used",
	"IrrigationUsed": "irrigation_used",
	"TemperatureC":   "temperature_c",
	"DaysToHarvest":  "days_to_harvest",
	"Crop":           "crop",
	"Soil":           "soil",
}

// Record converts the request to a FeatureRecord. Missing values become zero.
func (r PredictReq) Record() entity.FeatureRecord {
	var rec entity.FeatureRecord
	if r.RainfallMM != nil {
		rec.RainfallMM = *r.RainfallMM
	}
	if r.FertilizerUsed != nil {
		rec.FertilizerUsed = entity.Flag(*r.FertilizerUsed)
	}
	if r.IrrigationUsed != nil {
		rec.IrrigationUsed = entity.Flag(*r.IrrigationUsed)
	}
	if r.TemperatureC != nil {
		rec.TemperatureC = *r.TemperatureC
	}
	if r.DaysToHarvest != nil {
		rec.DaysToHarvest = *r.DaysToHarvest
	}
	if r.Crop != nil {
		rec.Crop = entity.Crop(*r.Crop)
	}
	if r.Soil != nil {
		rec.Soil = entity.Soil(*r.Soil)
	}
	return rec
}
