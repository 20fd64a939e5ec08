package risk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivityAnswer_JSON(t *testing.T) {
	var sub Submission
	require.NoError(t, json.Unmarshal([]byte(`{"physical_activity":true}`), &sub))
	require.Equal(t, ActivityAnswer{Level: ActivityVigorous, Legacy: true}, sub.PhysicalActivity)

	require.NoError(t, json.Unmarshal([]byte(`{"physical_activity":false}`), &sub))
	require.Equal(t, ActivityAnswer{Level: ActivitySedentary, Legacy: true}, sub.PhysicalActivity)

	require.NoError(t, json.Unmarshal([]byte(`{"physical_activity":"moderate"}`), &sub))
	require.Equal(t, ActivityAnswer{Level: ActivityModerate}, sub.PhysicalActivity)

	require.Error(t, json.Unmarshal([]byte(`{"physical_activity":3}`), &sub))

	out, err := json.Marshal(ActivityAnswer{Level: ActivityMild})
	require.NoError(t, err)
	require.JSONEq(t, `"mild"`, string(out))
}

func TestNewSubmission_FlattensAssessment(t *testing.T) {
	m := Measurement{
		Age: 47, Sex: SexFemale, HeightCm: 162, WeightKg: 71, BMI: 27.1, WaistCm: 89,
		Activity: ActivitySedentary, BPMedication: true, FamilyHistory: FamilyHistoryFirst,
		FastingBloodSugar: 104, Pulse: 88,
	}
	a := Assessment{Input: m, Breakdown: ScoreComposite(m)}
	sub := NewSubmission(a)

	require.Equal(t, a.Breakdown.Total, sub.TotalScore)
	require.Equal(t, a.Breakdown.Info.Label, sub.RiskCategory)
	require.Nil(t, sub.Systolic)
	require.Nil(t, sub.Diastolic)
	require.NotNil(t, sub.Pulse)
	require.Equal(t, 88.0, *sub.Pulse)

	raw, err := json.Marshal(sub)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{
		"age", "height_cm", "weight_kg", "bmi", "waist_cm", "sex_assigned_at_birth",
		"physical_activity", "daily_fruit_veg", "bp_medication", "high_blood_sugar_history",
		"family_history", "fbs", "total_score", "risk_category",
	} {
		require.Contains(t, decoded, key)
	}
	require.NotContains(t, decoded, "systolic")
	require.Equal(t, "sedentary", decoded["physical_activity"])
}
