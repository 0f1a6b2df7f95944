package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureRecord_Vector(t *testing.T) {
	t.Parallel()

	r := FeatureRecord{
		RainfallMM:     812.5,
		FertilizerUsed: FlagYes,
		IrrigationUsed: FlagNo,
		TemperatureC:   27.3,
		DaysToHarvest:  110,
		Crop:           CropSoybean,
		Soil:           SoilChalky,
	}

	assert.Equal(t, []float64{812.5, 1, 0, 27.3, 110, 3, 5}, r.Vector())
	assert.Len(t, FeatureNames, len(r.Vector()))
}

func TestEnumLabels(t *testing.T) {
	t.Parallel()

	crops := []string{}
	for _, c := range AllCrops() {
		assert.True(t, c.Valid())
		crops = append(crops, c.Label())
	}
	assert.Equal(t, []string{"Cotton", "Rice", "Barley", "Soybean", "Wheat", "Maize"}, crops)

	soils := []string{}
	for _, s := range AllSoils() {
		assert.True(t, s.Valid())
		soils = append(soils, s.Label())
	}
	assert.Equal(t, []string{"Sandy", "Clay", "Loam", "Silt", "Peaty", "Chalky"}, soils)

	assert.Equal(t, "Yes", FlagYes.Label())
	assert.Equal(t, "No", FlagNo.Label())
	assert.False(t, Crop(6).Valid())
	assert.Equal(t, "Unknown", Soil(42).Label())
}

func TestFeatureRecord_Details(t *testing.T) {
	t.Parallel()

	r := FeatureRecord{RainfallMM: 300, FertilizerUsed: FlagNo, IrrigationUsed: FlagYes, TemperatureC: 18.5, DaysToHarvest: 90, Crop: CropRice, Soil: SoilClay}
	got := r.Details()

	assert.Len(t, got, 7)
	assert.Equal(t, Detail{Name: "Rainfall (mm)", Value: "300"}, got[0])
	assert.Equal(t, "Yes", got[2].Value)
	assert.Equal(t, "18.5", got[3].Value)
	assert.Equal(t, "Rice", got[5].Value)
	assert.Equal(t, "Clay", got[6].Value)
}
