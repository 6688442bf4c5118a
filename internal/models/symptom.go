package models

const (
	SymptomFever    = "fever"
	SymptomCough    = "cough"
	SymptomFatigue  = "fatigue"
	SymptomCold     = "cold"
	SymptomBodyPain = "bodyPain"
)

type BuiltinSymptom struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

func DefaultBuiltinSymptoms() []BuiltinSymptom {
	return []BuiltinSymptom{
		{ID: SymptomFever, Label: "Fever", Description: "High body temperature"},
		{ID: SymptomCough, Label: "Cough", Description: "Persistent coughing"},
		{ID: SymptomFatigue, Label: "Fatigue", Description: "Extreme tiredness"},
		{ID: SymptomCold, Label: "Cold", Description: "Runny nose or congestion"},
		{ID: SymptomBodyPain, Label: "Body Pain", Description: "Muscle or joint pain"},
	}
}

func IsBuiltinSymptom(id string) bool {
	for _, symptom := range DefaultBuiltinSymptoms() {
		if symptom.ID == id {
			return true
		}
	}
	return false
}
