package records

import (
	"time"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

// Record is one saved assessment as stored by the collector.
type Record struct {
	ID                    int64     `json:"id"`
	Age                   int       `json:"age"`
	HeightCm              float64   `json:"height_cm"`
	WeightKg              float64   `json:"weight_kg"`
	BMI                   float64   `json:"bmi"`
	WaistCm               float64   `json:"waist_cm"`
	Sex                   string    `json:"sex_assigned_at_birth"`
	PhysicalActivity      string    `json:"physical_activity"`
	DailyFruitVeg         bool      `json:"daily_fruit_veg"`
	BPMedication          bool      `json:"bp_medication"`
	HighBloodSugarHistory bool      `json:"high_blood_sugar_history"`
	FamilyHistory         *string   `json:"family_history"`
	FBS                   float64   `json:"fbs"`
	Systolic              *float64  `json:"systolic"`
	Diastolic             *float64  `json:"diastolic"`
	Pulse                 *float64  `json:"pulse"`
	TotalScore            int       `json:"total_score"`
	RiskCategory          string    `json:"risk_category"`
	CreatedAt             time.Time `json:"created_at"`
}

// SaveRequest is the decoded /api/save/ body. Pointers distinguish absent
// fields from zero values.
type SaveRequest struct {
	Age                   *int                 `json:"age"`
	HeightCm              *float64             `json:"height_cm"`
	WeightKg              *float64             `json:"weight_kg"`
	BMI                   *float64             `json:"bmi"`
	WaistCm               *float64             `json:"waist_cm"`
	Sex                   *string              `json:"sex_assigned_at_birth"`
	PhysicalActivity      *risk.ActivityAnswer `json:"physical_activity"`
	DailyFruitVeg         *bool                `json:"daily_fruit_veg"`
	BPMedication          *bool                `json:"bp_medication"`
	HighBloodSugarHistory *bool                `json:"high_blood_sugar_history"`
	FamilyHistory         *string              `json:"family_history"`
	FBS                   *float64             `json:"fbs"`
	Systolic              *float64             `json:"systolic"`
	Diastolic             *float64             `json:"diastolic"`
	Pulse                 *float64             `json:"pulse"`
	TotalScore            *int                 `json:"total_score"`
	RiskCategory          *string              `json:"risk_category"`
}

// SaveResponse acknowledges a stored record.
type SaveResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// ListFilter narrows the staff listing.
type ListFilter struct {
	RiskCategory string
	Sex          string
	Limit        int
	Offset       int
}

// Config holds collector knobs.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}
