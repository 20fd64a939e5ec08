package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

var baseScoreArgs = []string{
	"score", "--no-color",
	"--age", "45", "--height-cm", "170", "--weight", "70", "--sex", "female",
	"--waist", "85", "--activity", "moderate", "--fruit-veg", "yes",
	"--family-history", "second", "--fbs", "100",
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScore_Table(t *testing.T) {
	out, err := runCLI(t, baseScoreArgs...)
	require.NoError(t, err)
	require.Contains(t, out, "10/34")
	require.Contains(t, out, "50/100")
	require.Contains(t, out, "Composite risk: Moderate Risk (Recommended screening within 1 year)")
	require.Contains(t, out, "IDRS risk:      High Risk (High chance of insulin resistance. Requires screening.)")
	require.Contains(t, out, "BMI 24.2: Overweight")
	require.NotContains(t, out, "Blood pressure")
}

func TestScore_JSON(t *testing.T) {
	out, err := runCLI(t, append(baseScoreArgs, "--output", "json", "--systolic", "120", "--diastolic", "80", "--pulse", "72")...)
	require.NoError(t, err)

	var assessment risk.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &assessment))
	require.Equal(t, 10, assessment.Breakdown.Total)
	require.Equal(t, risk.CategoryModerate, assessment.Breakdown.Category)
	require.Equal(t, 50, assessment.IDRS.Total)
	require.Equal(t, risk.CategoryHigh, assessment.IDRS.Category)
	require.Equal(t, 72, assessment.Input.Pulse)
	require.NotEmpty(t, assessment.ID)
}

func TestScore_FeetAndInches(t *testing.T) {
	out, err := runCLI(t, "score", "--no-color", "--output", "json",
		"--age", "30", "--height-unit", "ft", "--height-feet", "5", "--height-inches", "8", "--weight", "70",
		"--sex", "male", "--waist-unit", "inch", "--waist", "35", "--activity", "vigorous",
		"--fruit-veg", "yes", "--family-history", "zero", "--fbs", "90")
	require.NoError(t, err)

	var assessment risk.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &assessment))
	require.InDelta(t, 172.72, assessment.Input.HeightCm, 1e-6)
	require.InDelta(t, 88.9, assessment.Input.WaistCm, 1e-6)
	require.Equal(t, risk.CategoryLow, assessment.Breakdown.Category)
}

func TestScore_ReportsEveryProblem(t *testing.T) {
	out, err := runCLI(t, "score", "--no-color", "--age", "130", "--fbs=-1")
	require.ErrorIs(t, err, errInvalidForm)
	require.Contains(t, out, "Age cannot be greater than 120")
	require.Contains(t, out, "FBS cannot be negative")
	require.Contains(t, out, "Please select your family history")
	require.Contains(t, out, "Waist circumference is required")
}

func TestScore_RequireVitals(t *testing.T) {
	out, err := runCLI(t, append(baseScoreArgs, "--require-vitals")...)
	require.ErrorIs(t, err, errInvalidForm)
	require.Contains(t, out, "Systolic BP is required")
	require.Contains(t, out, "Pulse Rate is required")
}

func TestScore_RejectsUnknownOutput(t *testing.T) {
	_, err := runCLI(t, append(baseScoreArgs, "--output", "xml")...)
	require.ErrorContains(t, err, "unsupported output")
}

func TestScore_Submit(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/save/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"saved","id":7}`))
	}))
	defer server.Close()

	out, err := runCLI(t, append(baseScoreArgs, "--submit", "--api-url", server.URL)...)
	require.NoError(t, err)
	require.Contains(t, out, "Result submitted.")
	require.Equal(t, float64(10), got["total_score"])
	require.Equal(t, "Moderate Risk", got["risk_category"])
	require.Equal(t, "moderate", got["physical_activity"])
	require.Equal(t, "second", got["family_history"])
}

func TestScore_SubmitFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"invalid_input"}}`))
	}))
	defer server.Close()

	_, err := runCLI(t, append(baseScoreArgs, "--submit", "--api-url", server.URL)...)
	require.ErrorContains(t, err, "submit result")
}

func TestScore_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("RISKCTL_OUTPUT", "json")
	out, err := runCLI(t, baseScoreArgs...)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestMigrate_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "records.db")

	out, err := runCLI(t, "migrate", "--backend", "sqlite", "--dsn", dsn)
	require.NoError(t, err)
	require.Contains(t, out, "sqlite record schema at version 1")

	out, err = runCLI(t, "migrate", "--backend", "sqlite", "--dsn", dsn, "--version", "0")
	require.NoError(t, err)
	require.Contains(t, out, "sqlite record schema at version 0")
}

func TestMigrate_RequiresDSN(t *testing.T) {
	_, err := runCLI(t, "migrate", "--backend", "sqlite")
	require.ErrorContains(t, err, "--dsn is required")
}

func TestMigrate_RejectsMemoryBackend(t *testing.T) {
	_, err := runCLI(t, "migrate", "--backend", "memory", "--dsn", "x")
	require.ErrorContains(t, err, "not supported")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "riskctl dev")
}
