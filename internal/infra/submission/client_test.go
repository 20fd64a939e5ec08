package submission

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

func TestClient_SubmitPostsCanonicalPayload(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/save/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"saved","id":7}`))
	}))
	defer srv.Close()

	m := risk.Measurement{
		Age: 50, Sex: risk.SexMale, HeightCm: 175, WeightKg: 80, BMI: 26.1, WaistCm: 100,
		Activity: risk.ActivityMild, DailyFruitVeg: true, FamilyHistory: risk.FamilyHistorySecond,
		FastingBloodSugar: 110, Systolic: 135,
	}
	payload := risk.NewSubmission(risk.Assessment{Input: m, Breakdown: risk.ScoreComposite(m)})

	client := NewClient(srv.URL+"/", time.Second, newTestLogger())
	require.NoError(t, client.Submit(context.Background(), payload))

	require.Equal(t, "male", received["sex_assigned_at_birth"])
	require.Equal(t, "mild", received["physical_activity"])
	require.Equal(t, "second", received["family_history"])
	require.Equal(t, 135.0, received["systolic"])
	require.NotContains(t, received, "diastolic")
	require.NotContains(t, received, "pulse")
	require.Equal(t, float64(payload.TotalScore), received["total_score"])
	require.Equal(t, payload.RiskCategory, received["risk_category"])
}

func TestClient_SubmitReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Missing fields: ['bmi']"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, newTestLogger()).Submit(context.Background(), risk.Submission{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=400")
}

func TestClient_SubmitWithoutBaseURL(t *testing.T) {
	err := NewClient("  ", time.Second, newTestLogger()).Submit(context.Background(), risk.Submission{})
	require.ErrorIs(t, err, ErrNoBaseURL)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
