// Package features defines the prediction request and its fixed-order
// numeric encoding.
package features

// Width is the number of columns the predictor is trained on.
const Width = 8

// Names lists the feature columns in training order. The order is a
// contract with the artifact: reordering silently corrupts predictions.
var Names = [Width]string{
	"gender",
	"hypertension",
	"heart_disease",
	"smoking_history",
	"bmi",
	"HbA1c_level",
	"blood_glucose_level",
	"age_category",
}

// Request is one prediction input. Categorical fields are integers,
// continuous fields are floats.
type Request struct {
	Gender            int     `json:"gender"`
	Hypertension      int     `json:"hypertension"`
	HeartDisease      int     `json:"heart_disease"`
	SmokingHistory    int     `json:"smoking_history"`
	BMI               float64 `json:"bmi"`
	HbA1cLevel        float64 `json:"HbA1c_level"`
	BloodGlucoseLevel float64 `json:"blood_glucose_level"`
	AgeCategory       int     `json:"age_category"`
}

// Vector arranges the request into the order given by Names.
func (r Request) Vector() []float64 {
	return []float64{
		float64(r.Gender),
		float64(r.Hypertension),
		float64(r.HeartDisease),
		float64(r.SmokingHistory),
		r.BMI,
		r.HbA1cLevel,
		r.BloodGlucoseLevel,
		float64(r.AgeCategory),
	}
}

// Matrix reshapes the request into a single-row inference batch.
func (r Request) Matrix() [][]float64 {
	return [][]float64{r.Vector()}
}

// MatchesNames reports whether cols equals Names element for element.
func MatchesNames(cols []string) bool {
	if len(cols) != Width {
		return false
	}
	for i, c := range cols {
		if c != Names[i] {
			return false
		}
	}
	return true
}
