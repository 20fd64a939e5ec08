package risk

import "math"

const levelUnknown = "unknown"

var unknownClassification = Classification{Level: levelUnknown, Label: "Not provided"}

// ClassifyBMI applies the Asian-standard BMI bands.
func ClassifyBMI(bmi float64) Classification {
	switch {
	case !positive(bmi):
		return unknownClassification
	case bmi < 18.5:
		return Classification{
			Level:  "underweight",
			Label:  "Underweight",
			Advice: "Low BMI may indicate nutritional deficiencies. Increase calorie intake with protein-rich foods.",
			Icon:   "🔵",
		}
	case bmi < 23:
		return Classification{
			Level:  "normal",
			Label:  "Normal",
			Advice: "Healthy BMI. Maintain a balanced diet and regular physical activity.",
			Icon:   "🟢",
		}
	case bmi < 25:
		return Classification{
			Level:  "overweight",
			Label:  "Overweight",
			Advice: "Slightly high BMI. Early lifestyle correction is recommended to prevent diabetes and high BP.",
			Icon:   "🟡",
		}
	default:
		return Classification{
			Level:  "obesity",
			Label:  "Obesity",
			Advice: "High BMI significantly increases risk of diabetes, hypertension and fatty liver. Consult a doctor for a weight-loss plan.",
			Icon:   "🔴",
		}
	}
}

// ClassifyBloodPressure stages a reading from joint systolic/diastolic ranges.
// The higher of the two stages wins.
func ClassifyBloodPressure(systolic, diastolic int) Classification {
	switch {
	case systolic <= 0 || diastolic <= 0:
		return unknownClassification
	case systolic >= 140 || diastolic >= 90:
		return Classification{
			Level:  "stage2",
			Label:  "Stage 2 Hypertension",
			Advice: "BP is high. This increases risk of heart disease, stroke and kidney damage. Medical evaluation is advised.",
			Icon:   "🔴",
		}
	case systolic >= 130 || diastolic >= 80:
		return Classification{
			Level:  "stage1",
			Label:  "Stage 1 Hypertension",
			Advice: "Early hypertension. Lifestyle correction and regular monitoring are recommended.",
			Icon:   "🟠",
		}
	case systolic >= 120:
		return Classification{
			Level:  "elevated",
			Label:  "Elevated",
			Advice: "An early warning stage that can progress to hypertension if ignored.",
			Icon:   "🟡",
		}
	default:
		return Classification{
			Level:  "normal",
			Label:  "Normal",
			Advice: "Your BP is within healthy range. Keep maintaining a balanced diet, exercise and stress control.",
			Icon:   "🟢",
		}
	}
}

// ClassifyPulse labels a resting heart rate.
func ClassifyPulse(bpm int) Classification {
	switch {
	case bpm <= 0:
		return unknownClassification
	case bpm < 60:
		return Classification{
			Level:  "bradycardia",
			Label:  "Bradycardia",
			Advice: "Low pulse may be normal for athletes but can indicate thyroid or heart rhythm issues if symptomatic.",
			Icon:   "🟡",
		}
	case bpm <= 100:
		return Classification{
			Level:  "normal",
			Label:  "Normal",
			Advice: "Indicates a healthy heart rhythm and stable circulation.",
			Icon:   "🟢",
		}
	default:
		return Classification{
			Level:  "tachycardia",
			Label:  "Tachycardia",
			Advice: "High pulse may be due to stress, dehydration, fever or heart rhythm issues. Monitor regularly.",
			Icon:   "🔴",
		}
	}
}

// ClassifyFastingSugar is the display banding for fasting blood sugar. Its
// cut points (140/200) are deliberately not the scoring tiers (100/110/126).
func ClassifyFastingSugar(mgdl float64) Classification {
	switch {
	case math.IsNaN(mgdl) || mgdl < 0:
		return unknownClassification
	case mgdl < 140:
		return Classification{
			Level:  "normal",
			Label:  "Normal",
			Advice: "Glucose regulation is normal.",
			Icon:   "🟢",
		}
	case mgdl < 200:
		return Classification{
			Level:  "prediabetes",
			Label:  "Prediabetes",
			Advice: "Early metabolic disturbance, usually rising insulin resistance. Pay attention and fix.",
			Icon:   "🟡",
		}
	default:
		return Classification{
			Level:  "diabetes",
			Label:  "Diabetes",
			Advice: "Strong suspicion of diabetes. Requires formal evaluation with fasting glucose and HbA1c.",
			Icon:   "🔴",
		}
	}
}

// ClassifyVitals builds every informational card for a measurement.
func ClassifyVitals(m Measurement) VitalsReport {
	return VitalsReport{
		BMI:           ClassifyBMI(m.BMI),
		BloodPressure: ClassifyBloodPressure(m.Systolic, m.Diastolic),
		Pulse:         ClassifyPulse(m.Pulse),
		FastingSugar:  ClassifyFastingSugar(m.FastingBloodSugar),
	}
}
