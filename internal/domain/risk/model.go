package risk

import (
	"strings"
	"time"
)

// Sex is the sex assigned at birth; it only moves waist thresholds.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ParseSex normalizes user input, reporting false for anything unknown.
func ParseSex(raw string) (Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return SexMale, true
	case "female", "f":
		return SexFemale, true
	default:
		return "", false
	}
}

// ActivityLevel is the canonical four level physical activity scale.
type ActivityLevel string

const (
	ActivityUnknown   ActivityLevel = ""
	ActivityVigorous  ActivityLevel = "vigorous"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityMild      ActivityLevel = "mild"
	ActivitySedentary ActivityLevel = "sedentary"
)

// ParseActivity accepts the four level scale and the legacy yes/no answer.
// Legacy answers map yes to vigorous and no to sedentary; legacy reports that
// the mild/moderate distinction was unavailable.
func ParseActivity(raw string) (level ActivityLevel, legacy bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "vigorous":
		return ActivityVigorous, false
	case "moderate":
		return ActivityModerate, false
	case "mild":
		return ActivityMild, false
	case "sedentary":
		return ActivitySedentary, false
	case "yes", "true":
		return ActivityVigorous, true
	case "no", "false":
		return ActivitySedentary, true
	default:
		return ActivityUnknown, false
	}
}

// FamilyHistory is the closest relative with diabetes.
type FamilyHistory string

const (
	// FamilyHistoryNone is the unselected placeholder and never a valid answer.
	FamilyHistoryNone   FamilyHistory = "none"
	FamilyHistoryZero   FamilyHistory = "zero"
	FamilyHistorySecond FamilyHistory = "second"
	FamilyHistoryFirst  FamilyHistory = "first"
)

// ParseFamilyHistory returns FamilyHistoryNone for anything unrecognised.
func ParseFamilyHistory(raw string) FamilyHistory {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "zero":
		return FamilyHistoryZero
	case "second":
		return FamilyHistorySecond
	case "first":
		return FamilyHistoryFirst
	default:
		return FamilyHistoryNone
	}
}

// BMISource records whether BMI was typed in or derived from height and weight.
type BMISource string

const (
	BMICalculated BMISource = "calculated"
	BMIDirect     BMISource = "direct"
)

// Measurement is the normalized, immutable input of the scoring engine.
// Zero numeric values mean "not supplied" and score nothing.
type Measurement struct {
	Age                 int           `json:"age"`
	Sex                 Sex           `json:"sex"`
	HeightCm            float64       `json:"heightCm"`
	WeightKg            float64       `json:"weightKg"`
	BMI                 float64       `json:"bmi"`
	BMISource           BMISource     `json:"bmiSource,omitempty"`
	WaistCm             float64       `json:"waistCm"`
	Activity            ActivityLevel `json:"activity"`
	DailyFruitVeg       bool          `json:"dailyFruitVeg"`
	BPMedication        bool          `json:"bpMedication"`
	PriorHighBloodSugar bool          `json:"priorHighBloodSugar"`
	FamilyHistory       FamilyHistory `json:"familyHistory"`
	FastingBloodSugar   float64       `json:"fastingBloodSugar"`
	Systolic            int           `json:"systolic,omitempty"`
	Diastolic           int           `json:"diastolic,omitempty"`
	Pulse               int           `json:"pulse,omitempty"`
}

// withDerivedBMI fills BMI from height and weight when only those were given.
func (m Measurement) withDerivedBMI() Measurement {
	if m.BMI > 0 {
		return m
	}
	if bmi := ComputeBMI(m.HeightCm, m.WeightKg); bmi > 0 {
		m.BMI = bmi
		m.BMISource = BMICalculated
	}
	return m
}

// Category is a discrete risk bucket shared by both scores.
type Category string

const (
	CategoryLow      Category = "Low"
	CategoryModerate Category = "Moderate"
	CategoryHigh     Category = "High"
	CategoryVeryHigh Category = "VeryHigh"
)

// CategoryInfo is fixed presentation data attached to a category.
type CategoryInfo struct {
	Label   string `json:"label"`
	Message string `json:"message,omitempty"`
	Icon    string `json:"icon"`
}

// SubScores holds the nine composite factor points.
type SubScores struct {
	Age               int `json:"age"`
	BMI               int `json:"bmi"`
	Waist             int `json:"waist"`
	Activity          int `json:"activity"`
	FruitVeg          int `json:"fruitVeg"`
	BPMedication      int `json:"bpMedication"`
	HighSugarHistory  int `json:"highSugarHistory"`
	FamilyHistory     int `json:"familyHistory"`
	FastingBloodSugar int `json:"fastingBloodSugar"`
}

// Sum adds the nine factors.
func (s SubScores) Sum() int {
	return s.Age + s.BMI + s.Waist + s.Activity + s.FruitVeg +
		s.BPMedication + s.HighSugarHistory + s.FamilyHistory + s.FastingBloodSugar
}

// ScoreBreakdown is the composite result.
type ScoreBreakdown struct {
	Scores   SubScores    `json:"scores"`
	Total    int          `json:"totalScore"`
	Category Category     `json:"riskCategory"`
	Info     CategoryInfo `json:"info"`
}

// IdrsSubScores holds the four IDRS factor points.
type IdrsSubScores struct {
	Age           int `json:"age"`
	Waist         int `json:"waist"`
	Activity      int `json:"activity"`
	FamilyHistory int `json:"familyHistory"`
}

// Sum adds the four factors.
func (s IdrsSubScores) Sum() int {
	return s.Age + s.Waist + s.Activity + s.FamilyHistory
}

// IdrsScore is the Indian Diabetes Risk Score result.
type IdrsScore struct {
	Scores   IdrsSubScores `json:"scores"`
	Total    int           `json:"total"`
	Category Category      `json:"idrsRiskCategory"`
	Info     CategoryInfo  `json:"info"`
}

// Classification is a display-only label produced by the ancillary classifiers.
type Classification struct {
	Level  string `json:"level"`
	Label  string `json:"label"`
	Advice string `json:"advice,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

// VitalsReport groups the informational cards.
type VitalsReport struct {
	BMI           Classification `json:"bmi"`
	BloodPressure Classification `json:"bloodPressure"`
	Pulse         Classification `json:"pulse"`
	FastingSugar  Classification `json:"fastingSugar"`
}

// Assessment is the full result record round-tripped through the result slot.
type Assessment struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId,omitempty"`
	Input     Measurement    `json:"input"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	IDRS      IdrsScore      `json:"idrs"`
	Vitals    VitalsReport   `json:"vitals"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Config holds runtime knobs for the assessment service.
type Config struct {
	// RequireVitals makes blood pressure and pulse mandatory form fields.
	RequireVitals bool
	// SubmitTimeout bounds the fire-and-forget submission.
	SubmitTimeout time.Duration
	// ResultTTL is how long a session's result slot survives.
	ResultTTL time.Duration
}

// AssessRequest pairs a raw form with the session that owns its result slot.
type AssessRequest struct {
	SessionID string
	Form      Form
}
