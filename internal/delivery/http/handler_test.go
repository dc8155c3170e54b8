package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/delivery/http/middleware"
	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/harness"
	"github.com/Harsh-BH/codepractice/internal/judge"
	"github.com/Harsh-BH/codepractice/internal/language"
	"github.com/Harsh-BH/codepractice/internal/progress"
	mockpub "github.com/Harsh-BH/codepractice/internal/publisher/mock"
	"github.com/Harsh-BH/codepractice/internal/quota"
	"github.com/Harsh-BH/codepractice/internal/repository/memory"
	mockrepo "github.com/Harsh-BH/codepractice/internal/repository/mock"
	"github.com/Harsh-BH/codepractice/internal/security"
	"github.com/Harsh-BH/codepractice/internal/usecase"
)

var (
	testSecret = []byte("handler-test-secret")
	cleanCode  = "n = int(input())\nprint(n * 2)\n"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	fake     *judge.Fake
	subs     *mockrepo.SubmissionRepository
	problems *mockrepo.ProblemRepository
	pub      *mockpub.MockPublisher
	checks   map[string]HealthCheck
}

func setupTestRouter(t *testing.T, dailyLimit int, cooldown time.Duration) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	registry := language.Default()
	tracker := quota.NewTracker(memory.NewQuotaStore(), quota.Policy{
		DailyLimit: dailyLimit,
		Cooldown:   cooldown,
		Location:   time.UTC,
	})
	gate := usecase.NewGate(security.NewFilter(0), registry, tracker, logger)

	fake := judge.NewFake()
	subs := mockrepo.NewSubmissionRepository()
	problems := &mockrepo.ProblemRepository{Problems: map[string]*domain.Problem{}}
	ledger := progress.NewLedger(mockrepo.NewProgressStore(), time.UTC, logger)
	pub := mockpub.NewMockPublisher()

	resultUC := usecase.NewGetResultUsecase(gate, fake, subs, logger)
	code := NewCodeHandler(
		usecase.NewSubmitCodeUsecase(gate, fake, subs, logger),
		resultUC,
		usecase.NewExecuteCodeUsecase(gate, fake, subs, logger),
		usecase.NewSubmitWithTestsUsecase(gate, problems, subs, harness.New(fake, 1, logger), ledger, pub, logger),
		usecase.NewCodeStatsUsecase(tracker, logger),
		logger,
	)

	env := &testEnv{
		fake:     fake,
		subs:     subs,
		problems: problems,
		pub:      pub,
		checks: map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	env.router = NewRouter(ctx, RouterConfig{
		Code:         code,
		Submissions:  NewSubmissionHandler(usecase.NewGetSubmissionUsecase(subs, logger), usecase.NewGetProgressUsecase(ledger), logger),
		Stream:       NewWebSocketHandler(resultUC, 10*time.Millisecond, logger),
		Health:       NewHealthHandler(env.checks, logger),
		Registry:     registry,
		JWTSecret:    testSecret,
		RateLimit:    1000,
		MaxBodyBytes: 1 << 20,
		Logger:       logger,
	})
	return env
}

func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID, domain.RoleStudent))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return v
}

func addProblem(env *testEnv) {
	env.problems.Problems["double"] = &domain.Problem{
		ID:         "double",
		Title:      "Double It",
		Category:   "Warmup",
		Difficulty: domain.DifficultyMedium,
		XPReward:   25,
		TestCases: []domain.TestCase{
			{ID: "1", Input: "2", ExpectedOutput: "4"},
			{ID: "2", Input: "5", ExpectedOutput: "10"},
			{ID: "3", Input: "7", ExpectedOutput: "14"},
		},
	}
	env.fake.On("2", domain.ExecutionResult{Status: domain.StatusAccepted, Stdout: "4\n"})
	env.fake.On("5", domain.ExecutionResult{Status: domain.StatusAccepted, Stdout: "10\n"})
	env.fake.On("7", domain.ExecutionResult{Status: domain.StatusAccepted, Stdout: "14\n"})
}

// ---------- /code/submit ----------

func TestSubmitHandler_Success(t *testing.T) {
	env := setupTestRouter(t, 100, 0)

	w := env.do(t, http.MethodPost, "/code/submit", "u1", map[string]any{
		"source_code": cleanCode,
		"language_id": 71,
		"stdin":       "4",
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[domain.SubmitCodeResponse](t, w)
	if resp.Token == "" {
		t.Error("expected non-empty token")
	}
	if resp.RemainingExecutions != 99 {
		t.Errorf("expected 99 remaining, got %d", resp.RemainingExecutions)
	}
}

func TestSubmitHandler_Unauthenticated(t *testing.T) {
	env := setupTestRouter(t, 100, 0)

	w := env.do(t, http.MethodPost, "/code/submit", "", map[string]any{
		"source_code": cleanCode,
		"language_id": "python",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestSubmitHandler_EmptyBody(t *testing.T) {
	env := setupTestRouter(t, 100, 0)

	w := env.do(t, http.MethodPost, "/code/submit", "u1", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

// A denylisted pattern is a 400 and never reaches the judge.
func TestSubmitHandler_DangerousCode(t *testing.T) {
	env := setupTestRouter(t, 100, 0)

	w := env.do(t, http.MethodPost, "/code/submit", "u1", map[string]any{
		"source_code": "import subprocess\nsubprocess.run(['ls'])",
		"language_id": "python",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	body := decode[map[string]any](t, w)
	if body["type"] != typeSecurity {
		t.Errorf("expected type %s, got %v", typeSecurity, body["type"])
	}
	if env.fake.CallCount() != 0 {
		t.Error("judge must not be called")
	}

	stats := decode[domain.QuotaStats](t, env.do(t, http.MethodGet, "/code/stats", "u1", nil))
	if stats.ExecutionsToday != 0 {
		t.Errorf("expected no quota consumed, got %d", stats.ExecutionsToday)
	}
}

// One past the daily limit is a 429 with remaining 0.
func TestSubmitHandler_DailyLimit(t *testing.T) {
	env := setupTestRouter(t, 1, 0)
	body := map[string]any{"source_code": cleanCode, "language_id": "python"}

	if w := env.do(t, http.MethodPost, "/code/submit", "u1", body); w.Code != http.StatusAccepted {
		t.Fatalf("first submit: expected 202, got %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/code/submit", "u1", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[map[string]any](t, w)
	if resp["type"] != typeRateLimit || resp["reason"] != string(domain.ReasonDailyLimitExceeded) {
		t.Errorf("unexpected body: %v", resp)
	}
	if resp["remaining"] != float64(0) {
		t.Errorf("expected remaining 0, got %v", resp["remaining"])
	}
}

func TestSubmitHandler_Cooldown(t *testing.T) {
	env := setupTestRouter(t, 100, time.Minute)
	body := map[string]any{"source_code": cleanCode, "language_id": "python"}

	env.do(t, http.MethodPost, "/code/submit", "u1", body)
	w := env.do(t, http.MethodPost, "/code/submit", "u1", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", w.Code)
	}
	resp := decode[map[string]any](t, w)
	if resp["reason"] != string(domain.ReasonCooldownActive) {
		t.Errorf("expected cooldown reason, got %v", resp["reason"])
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// Other users are unaffected.
	if w := env.do(t, http.MethodPost, "/code/submit", "u2", body); w.Code != http.StatusAccepted {
		t.Errorf("other user: expected 202, got %d", w.Code)
	}
}

func TestSubmitHandler_UpstreamRateLimit(t *testing.T) {
	env := setupTestRouter(t, 100, 0)
	env.fake.FailOn("busy", domain.ErrUpstreamRateLimit)

	w := env.do(t, http.MethodPost, "/code/submit", "u1", map[string]any{
		"source_code": cleanCode, "language_id": "python", "stdin": "busy",
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", w.Code)
	}
	resp := decode[map[string]any](t, w)
	if resp["reason"] != reasonUpstreamRateLimit {
		t.Errorf("expected upstream reason, got %v", resp["reason"])
	}
}

// ---------- /code/result/:token ----------

func TestResultHandler(t *testing.T) {
	env := setupTestRouter(t, 100, 0)
	created := decode[domain.SubmitCodeResponse](t, env.do(t, http.MethodPost, "/code/submit", "u1", map[string]any{
		"source_code": cleanCode, "language_id": "python", "stdin": "21",
	}))

	w := env.do(t, http.MethodGet, "/code/result/"+created.Token, "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[domain.ResultResponse](t, w)
	if resp.Result.Status != domain.StatusAccepted || resp.Result.Stdout != "21" {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
	if resp.ExecutionStats.ExecutionsToday != 1 {
		t.Errorf("expected 1 execution today, got %d", resp.ExecutionStats.ExecutionsToday)
	}

	if w := env.do(t, http.MethodGet, "/code/result/"+created.Token, "u2", nil); w.Code != http.StatusNotFound {
		t.Errorf("other user: expected 404, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/code/result/unknown", "u1", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown token: expected 404, got %d", w.Code)
	}
}

func dialStream(t *testing.T, env *testEnv, userID, token string) map[string]any {
	t.Helper()
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/code/result/" + url.PathEscape(token) +
		"/stream?access_token=" + url.QueryEscape(tokenFor(t, userID, domain.RoleStudent))
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestStreamHandler_ErrorsUseResponseTaxonomy(t *testing.T) {
	env := setupTestRouter(t, 100, 0)

	msg := dialStream(t, env, "u1", "unknown")
	if msg["type"] != typeNotFound || msg["status"] != float64(http.StatusNotFound) {
		t.Errorf("unknown token: %v", msg)
	}

	env.subs.GetByTokenFn = func(context.Context, string) (*domain.Submission, error) {
		return nil, errors.New(`postgres: get submission: dial tcp 10.0.0.5:5432: connection refused`)
	}
	msg = dialStream(t, env, "u1", "tok")
	if msg["type"] != typeInternal || msg["status"] != float64(http.StatusInternalServerError) {
		t.Errorf("storage failure: %v", msg)
	}
	if text, _ := msg["error"].(string); strings.Contains(text, "postgres") || strings.Contains(text, "10.0.0.5") {
		t.Errorf("internal detail leaked to client: %q", text)
	}
}

// ---------- /code/execute ----------

func TestExecuteHandler(t *testing.T) {
	env := setupTestRouter(t, 100, 0)
	env.fake.On("bad", domain.ExecutionResult{Status: domain.StatusCompilationError, CompileOutput: "syntax error"})

	w := env.do(t, http.MethodPost, "/code/execute", "u1", map[string]any{
		"code": cleanCode, "language": "python", "stdin": "bad",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("compile errors are normal results: expected 200, got %d", w.Code)
	}
	resp := decode[domain.ResultResponse](t, w)
	if resp.Result.Status != domain.StatusCompilationError || resp.Result.CompileOutput != "syntax error" {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}

func TestExecuteHandler_Timeout(t *testing.T) {
	env := setupTestRouter(t, 100, 0)
	env.fake.On("hang", domain.ExecutionResult{Status: domain.StatusProcessing})

	w := env.do(t, http.MethodPost, "/code/execute", "u1", map[string]any{
		"code": cleanCode, "language": "python", "stdin": "hang",
	})
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("expected status 504, got %d", w.Code)
	}
}

func TestExecuteHandler_MalformedUpstream(t *testing.T) {
	env := setupTestRouter(t, 100, 0)
	env.fake.FailOn("junk", errors.Join(errors.New("judge: decode"), domain.ErrMalformedUpstream))

	w := env.do(t, http.MethodPost, "/code/execute", "u1", map[string]any{
		"code": cleanCode, "language": "python", "stdin": "junk",
	})
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", w.Code)
	}
}

// ---------- /submit-with-tests ----------

func TestSubmitWithTestsHandler_AcceptedThenResubmitted(t *testing.T) {
	env := setupTestRouter(t, 100, 0)
	addProblem(env)
	body := map[string]any{"problemId": "double", "code": cleanCode, "language": "python"}

	w := env.do(t, http.MethodPost, "/submit-with-tests", "u1", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	first := decode[domain.SubmitWithTestsResponse](t, w)
	if first.Status != domain.StatusAccepted || first.PassedTestCases != 3 || first.TotalTestCases != 3 {
		t.Fatalf("unexpected verdict: %+v", first)
	}
	if first.XPEarned != 25 {
		t.Errorf("expected 25 XP, got %d", first.XPEarned)
	}

	second := decode[domain.SubmitWithTestsResponse](t, env.do(t, http.MethodPost, "/submit-with-tests", "u1", body))
	if second.Status != domain.StatusAccepted || second.XPEarned != 0 {
		t.Errorf("resubmission: expected Accepted with 0 XP, got %s/%d", second.Status, second.XPEarned)
	}

	progress := decode[domain.ProgressRecord](t, env.do(t, http.MethodGet, "/progress", "u1", nil))
	if progress.TotalXP != 25 || progress.TotalSolved != 1 {
		t.Errorf("unexpected progress: %+v", progress)
	}
}

func TestSubmitWithTestsHandler_HidesTestData(t *testing.T) {
	env := setupTestRouter(t, 100, 0)
	addProblem(env)
	env.fake.On("7", domain.ExecutionResult{Status: domain.StatusAccepted, Stdout: "15\n"})

	w := env.do(t, http.MethodPost, "/submit-with-tests", "u1", map[string]any{
		"problemId": "double", "code": cleanCode, "language": "python",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := decode[map[string]any](t, w)
	if resp["status"] != string(domain.StatusWrongAnswer) || resp["passedTestCases"] != float64(2) {
		t.Errorf("unexpected verdict: %v", resp)
	}
	for _, raw := range resp["testResults"].([]any) {
		tc := raw.(map[string]any)
		for _, hidden := range []string{"input", "expectedOutput", "expected_output"} {
			if _, ok := tc[hidden]; ok {
				t.Errorf("test result exposes %q", hidden)
			}
		}
	}
	if resp["xpEarned"] != float64(0) {
		t.Errorf("expected 0 XP, got %v", resp["xpEarned"])
	}
}

func TestSubmitWithTestsHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{"unknown problem", map[string]any{"problemId": "nope", "code": cleanCode, "language": "python"}, http.StatusNotFound},
		{"no test cases", map[string]any{"problemId": "empty", "code": cleanCode, "language": "python"}, http.StatusBadRequest},
		{"missing problem id", map[string]any{"code": cleanCode, "language": "python"}, http.StatusBadRequest},
		{"unknown language", map[string]any{"problemId": "double", "code": cleanCode, "language": "cobol"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t, 100, 0)
			addProblem(env)
			env.problems.Problems["empty"] = &domain.Problem{ID: "empty"}

			w := env.do(t, http.MethodPost, "/submit-with-tests", "u1", tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

// ---------- /submissions/:id ----------

func TestGetSubmissionHandler(t *testing.T) {
	env := setupTestRouter(t, 100, 0)
	created := decode[domain.SubmitCodeResponse](t, env.do(t, http.MethodPost, "/code/submit", "owner", map[string]any{
		"source_code": cleanCode, "language_id": "python",
	}))
	path := "/submissions/" + created.SubmissionID.String()

	w := env.do(t, http.MethodGet, path, "owner", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", w.Code)
	}
	sub := decode[domain.Submission](t, w)
	if sub.ID != created.SubmissionID || sub.SourceCode != cleanCode {
		t.Errorf("unexpected submission: %+v", sub)
	}

	if w := env.do(t, http.MethodGet, path, "someone-else", nil); w.Code != http.StatusNotFound {
		t.Errorf("other student: expected 404, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "t1", domain.RoleTeacher))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("teacher: expected 200, got %d", rec.Code)
	}

	if w := env.do(t, http.MethodGet, "/submissions/not-a-uuid", "owner", nil); w.Code != http.StatusBadRequest {
		t.Errorf("invalid id: expected 400, got %d", w.Code)
	}
}

// ---------- /languages, /health ----------

func TestLanguageHandler(t *testing.T) {
	env := setupTestRouter(t, 100, 0)

	w := env.do(t, http.MethodGet, "/languages", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := decode[map[string][]languageInfo](t, w)
	if got := len(resp["languages"]); got != len(language.DefaultEntries()) {
		t.Errorf("expected %d languages, got %d", len(language.DefaultEntries()), got)
	}
}

func TestHealthHandler(t *testing.T) {
	env := setupTestRouter(t, 100, 0)

	if w := env.do(t, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	env.checks["redis"] = func(context.Context) error { return errors.New("connection refused") }
	w := env.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	resp := decode[map[string]any](t, w)
	services := resp["services"].(map[string]any)
	if services["redis"] != "down" || services["postgres"] != "ok" {
		t.Errorf("unexpected services: %v", services)
	}
}
