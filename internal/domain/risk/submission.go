package risk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActivityAnswer is the physical_activity wire field. It is written as the
// enum string and read from either the enum or the legacy boolean.
type ActivityAnswer struct {
	Level  ActivityLevel
	Legacy bool
}

// MarshalJSON implements json.Marshaler.
func (a ActivityAnswer) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a.Level))
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *ActivityAnswer) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch raw {
	case "null", "":
		*a = ActivityAnswer{}
		return nil
	case "true", "false":
		level, _ := ParseActivity(raw)
		*a = ActivityAnswer{Level: level, Legacy: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("physical_activity must be a string or boolean: %w", err)
	}
	level, legacy := ParseActivity(s)
	*a = ActivityAnswer{Level: level, Legacy: legacy}
	return nil
}

// Submission is the canonical payload sent to the collector's /api/save/.
type Submission struct {
	Age                   int            `json:"age"`
	HeightCm              float64        `json:"height_cm"`
	WeightKg              float64        `json:"weight_kg"`
	BMI                   float64        `json:"bmi"`
	WaistCm               float64        `json:"waist_cm"`
	SexAssignedAtBirth    Sex            `json:"sex_assigned_at_birth"`
	PhysicalActivity      ActivityAnswer `json:"physical_activity"`
	DailyFruitVeg         bool           `json:"daily_fruit_veg"`
	BPMedication          bool           `json:"bp_medication"`
	HighBloodSugarHistory bool           `json:"high_blood_sugar_history"`
	FamilyHistory         FamilyHistory  `json:"family_history"`
	FBS                   float64        `json:"fbs"`
	Systolic              *float64       `json:"systolic,omitempty"`
	Diastolic             *float64       `json:"diastolic,omitempty"`
	Pulse                 *float64       `json:"pulse,omitempty"`
	TotalScore            int            `json:"total_score"`
	RiskCategory          string         `json:"risk_category"`
}

// NewSubmission flattens an assessment into the wire payload.
func NewSubmission(a Assessment) Submission {
	in := a.Input
	return Submission{
		Age:                   in.Age,
		HeightCm:              in.HeightCm,
		WeightKg:              in.WeightKg,
		BMI:                   in.BMI,
		WaistCm:               in.WaistCm,
		SexAssignedAtBirth:    in.Sex,
		PhysicalActivity:      ActivityAnswer{Level: in.Activity},
		DailyFruitVeg:         in.DailyFruitVeg,
		BPMedication:          in.BPMedication,
		HighBloodSugarHistory: in.PriorHighBloodSugar,
		FamilyHistory:         in.FamilyHistory,
		FBS:                   in.FastingBloodSugar,
		Systolic:              optionalVital(in.Systolic),
		Diastolic:             optionalVital(in.Diastolic),
		Pulse:                 optionalVital(in.Pulse),
		TotalScore:            a.Breakdown.Total,
		RiskCategory:          a.Breakdown.Info.Label,
	}
}

func optionalVital(v int) *float64 {
	if v <= 0 {
		return nil
	}
	f := float64(v)
	return &f
}
