package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/diabetes-risk/internal/domain/admin"
	"github.com/yanqian/diabetes-risk/internal/domain/records"
	"github.com/yanqian/diabetes-risk/internal/domain/risk"
	"github.com/yanqian/diabetes-risk/internal/infra/config"
	"github.com/yanqian/diabetes-risk/internal/infra/recordrepo"
	"github.com/yanqian/diabetes-risk/internal/infra/resultstore"
	"github.com/yanqian/diabetes-risk/pkg/metrics"
)

const validFormJSON = `{"age":"45","heightUnit":"cm","heightCm":"170","weight":"70","sex":"female",
"waistUnit":"cm","waist":"85","physicalActivity":"moderate","fruitVeg":"yes","bpMedication":"no",
"familyHistory":"second","fbs":"100"}`

func TestRouter_AssessAndReadBackResult(t *testing.T) {
	server := newRouterUnderTest(t, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/assessments", validFormJSON, map[string]string{sessionHeader: "sess-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "sess-1", rec.Header().Get(sessionHeader))

	var assessment risk.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))
	require.Equal(t, 45, assessment.Input.Age)
	require.Equal(t, 24.2, assessment.Input.BMI)
	require.Equal(t, risk.ScoreComposite(assessment.Input), assessment.Breakdown)

	rec = performRequest(server, http.MethodGet, "/api/v1/assessments/result", "", map[string]string{sessionHeader: "sess-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var loaded risk.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loaded))
	require.Equal(t, assessment.ID, loaded.ID)
	require.Equal(t, assessment.Breakdown, loaded.Breakdown)
}

func TestRouter_AssessListsEveryProblem(t *testing.T) {
	server := newRouterUnderTest(t, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/assessments", `{"age":"130","fbs":"-2"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_input", body["error"]["code"])
	problems, ok := body["error"]["problems"].([]any)
	require.True(t, ok)
	require.Contains(t, problems, "Age cannot be greater than 120")
	require.Contains(t, problems, "FBS cannot be negative")
	require.Contains(t, problems, "Please select your family history")
}

func TestRouter_AssessRejectsMalformedJSON(t *testing.T) {
	server := newRouterUnderTest(t, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/assessments", `{"age":{}}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_ResultMissingSession(t *testing.T) {
	server := newRouterUnderTest(t, nil)
	rec := performRequest(server, http.MethodGet, "/api/v1/assessments/result", "", map[string]string{sessionHeader: "nobody"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "result_not_found", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_Evaluate(t *testing.T) {
	server := newRouterUnderTest(t, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/assessments/evaluate",
		`{"age":70,"sex":"male","bmi":31,"waistCm":105,"activity":"sedentary","familyHistory":"first","fastingBloodSugar":210}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var assessment risk.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))
	require.Equal(t, risk.CategoryVeryHigh, assessment.Breakdown.Category)
	require.Equal(t, 100, assessment.IDRS.Total)
	require.Equal(t, "diabetes", assessment.Vitals.FastingSugar.Level)
}

func TestRouter_EvaluateWithHeightAndWeightOnly(t *testing.T) {
	server := newRouterUnderTest(t, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/assessments/evaluate",
		`{"age":40,"sex":"male","heightCm":170,"weightKg":95}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var assessment risk.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))
	require.Equal(t, 32.9, assessment.Input.BMI)
	require.Equal(t, 3, assessment.Breakdown.Scores.BMI)
	require.Equal(t, "Obesity", assessment.Vitals.BMI.Label)
}

func TestRouter_SaveRecord(t *testing.T) {
	server := newRouterUnderTest(t, nil)
	payload := `{"age":52,"height_cm":160,"weight_kg":68,"bmi":26.6,"waist_cm":92,"sex_assigned_at_birth":"female",
"physical_activity":false,"daily_fruit_veg":true,"bp_medication":false,"high_blood_sugar_history":false,
"family_history":"first","fbs":118,"total_score":17,"risk_category":"High Risk"}`

	rec := performRequest(server, http.MethodPost, "/api/save/", payload, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"message":"saved","id":1}`, rec.Body.String())

	rec = performRequest(server, http.MethodPost, "/api/save/", `{"age":52}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_input", body["error"]["code"])
	require.True(t, strings.HasPrefix(body["error"]["message"].(string), "missing fields: height_cm"))
}

func TestRouter_AdminRecordListing(t *testing.T) {
	server := newRouterUnderTest(t, nil)
	rec := performRequest(server, http.MethodPost, "/api/save/",
		`{"age":40,"height_cm":170,"weight_kg":70,"bmi":24.2,"waist_cm":90,"sex_assigned_at_birth":"male","fbs":90,"total_score":6,"risk_category":"Low Risk"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/admin/records", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/admin/records", "", map[string]string{"Authorization": "Bearer nope"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/admin/login", `{"username":"nurse","password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/admin/login", `{"username":"nurse","password":"s3cret-pass"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login admin.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	auth := map[string]string{"Authorization": "Bearer " + login.Token}

	rec = performRequest(server, http.MethodGet, "/api/v1/admin/records?sex=male&risk_category=Low+Risk", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Records []records.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Records, 1)
	require.Equal(t, "Low Risk", listing.Records[0].RiskCategory)

	rec = performRequest(server, http.MethodGet, "/api/v1/admin/records?limit=abc", "", auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/admin/records/1", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/admin/records/99", "", auth)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "record_not_found", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t, nil)

	rec := performRequest(server, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	performRequest(server, http.MethodPost, "/api/v1/assessments", validFormJSON, nil)
	rec = performRequest(server, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "diabetes_risk_assessments_total")
	require.Contains(t, rec.Body.String(), "diabetes_risk_http_request_duration_seconds")
}

func TestRouter_RateLimit(t *testing.T) {
	server := newRouterUnderTest(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	rec := performRequest(server, http.MethodGet, "/api/v1/assessments/result", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = performRequest(server, http.MethodGet, "/api/v1/assessments/result", "", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = performRequest(server, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, func(cfg *config.Config) {
		cfg.HTTP.AllowedOrigins = []string{"https://risk.example.org"}
	})
	rec := performRequest(server, http.MethodOptions, "/api/v1/assessments", "", map[string]string{"Origin": "https://risk.example.org"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://risk.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), sessionHeader)

	rec = performRequest(server, http.MethodGet, "/healthz", "", map[string]string{"Origin": "https://evil.example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = performRequest(server, http.MethodPost, "/api/v1/assessments", validFormJSON, map[string]string{"Origin": "https://risk.example.org"})
	require.Equal(t, sessionHeader, rec.Header().Get("Access-Control-Expose-Headers"))
}

func performRequest(server *http.Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, mutate func(*config.Config)) *http.Server {
	t.Helper()
	logger := newTestLogger()
	cfg := config.Default()
	cfg.HTTP.Address = ":0"
	cfg.HTTP.RateLimit.Enabled = false
	cfg.HTTP.Retry.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	recorder := metrics.NewRecorder()
	riskSvc := risk.NewService(risk.Config{ResultTTL: time.Hour}, resultstore.NewMemoryStore("test"), nil, recorder, logger)
	recordSvc := records.NewService(records.Config{}, recordrepo.NewMemoryRepository(), nil, nil, recorder, logger)
	adminSvc := admin.NewService(admin.Config{Username: "nurse", PasswordHash: string(hash), Secret: "test-secret", TokenTTL: time.Hour}, logger)

	handler := NewHandler(riskSvc, recordSvc, adminSvc, logger)
	return NewRouter(cfg, handler, adminSvc, recorder, logger)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]any {
	t.Helper()
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"  Bearer xyz": "xyz",
		"Basic abc":    "",
		"Bearer":       "",
		"Bearer    ":   "",
		"":             "",
	}
	for header, want := range cases {
		got, ok := bearerToken(header)
		require.Equal(t, want, got, header)
		require.Equal(t, want != "", ok, header)
	}
}
