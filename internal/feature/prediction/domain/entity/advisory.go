package entity

// Recommendation is one titled piece of guidance.
type Recommendation struct {
	Topic  string
	Detail string
}

// Advisory is the static guidance shown for a yield band.
type Advisory struct {
	Title                  string
	Description            string
	ReasonsHeading         string
	Reasons                []string
	RecommendationsHeading string
	Recommendations        []Recommendation
}

// AdvisoryFor returns the fixed guidance for b.
func AdvisoryFor(b Band) Advisory {
	switch b {
	case BandLow:
		return Advisory{
			Title:          "Low Yield",
			Description:    "Yield is significantly below average. Indicates poor crop performance.",
			ReasonsHeading: "Possible Reasons:",
			Reasons: []string{
				"Poor soil fertility",
				"Inadequate irrigation",
				"Improper fertilizer use",
				"Pest or disease attacks",
				"Lack of modern farming practices",
			},
			RecommendationsHeading: "Recommendations to Improve:",
			Recommendations: []Recommendation{
				{Topic: "Soil Testing & Fertilization", Detail: "Conduct soil tests and apply balanced fertilizers."},
				{Topic: "Crop Rotation", Detail: "Implement crop rotation to restore soil nutrients."},
				{Topic: "Irrigation Optimization", Detail: "Use drip or sprinkler systems for better water management."},
				{Topic: "Pest & Disease Management", Detail: "Adopt Integrated Pest Management (IPM) techniques."},
				{Topic: "Modern Farming Techniques", Detail: "Use precision farming tools such as sensors and drones."},
			},
		}
	case BandModerate:
		return Advisory{
			Title:          "Moderate Yield",
			Description:    "Yield is around average but has room for improvement.",
			ReasonsHeading: "Possible Reasons:",
			Reasons: []string{
				"Sub-optimal soil conditions",
				"Inconsistent irrigation practices",
				"Improper use of fertilizers",
				"Moderate pest/disease presence",
			},
			RecommendationsHeading: "Recommendations to Improve:",
			Recommendations: []Recommendation{
				{Topic: "Soil Health Monitoring", Detail: "Regularly monitor pH, nutrients, and organic matter."},
				{Topic: "Efficient Fertilizer Usage", Detail: "Adopt split fertilizer application techniques."},
				{Topic: "Water Management", Detail: "Schedule irrigation based on crop growth stages."},
				{Topic: "Disease Prevention", Detail: "Use certified seeds and proper spacing."},
				{Topic: "Training & Awareness", Detail: "Attend local agricultural extension workshops."},
			},
		}
	default:
		return Advisory{
			Title:                  "High Yield",
			Description:            "Yield is above average. Indicates optimal crop performance.",
			RecommendationsHeading: "Suggestions to Maintain or Enhance:",
			Recommendations: []Recommendation{
				{Topic: "Continue Best Practices", Detail: "Maintain current fertilization, irrigation, and pest management methods."},
				{Topic: "Adopt Advanced Technologies", Detail: "Explore precision agriculture, satellite data, and IoT tools."},
				{Topic: "Sustainable Practices", Detail: "Incorporate more organic fertilizers, reduce chemical inputs."},
				{Topic: "Monitor & Document", Detail: "Keep records of farming activities to analyze successful patterns."},
				{Topic: "Stay Updated", Detail: "Keep learning about the latest agricultural advancements."},
			},
		}
	}
}

// Assessment is a predicted yield together with its band and guidance.
type Assessment struct {
	Yield    float64
	Band     Band
	Advisory Advisory
}
