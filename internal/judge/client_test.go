package judge

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:         srv.URL,
		APIKey:          "key",
		APIHost:         "judge.test",
		HTTPTimeout:     2 * time.Second,
		PollInterval:    5 * time.Millisecond,
		MaxPollAttempts: 3,
		WallTimeSlack:   2,
		MaxProcesses:    60,
		MaxFileSizeKB:   1024,
	}, zap.NewNop())
}

func TestClient_SubmitEncodesPayload(t *testing.T) {
	var got submissionPayload
	var headers http.Header
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submissions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("base64_encoded") != "true" {
			t.Error("expected base64_encoded=true")
		}
		headers = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"token":"tok-1"}`)
	}))

	token, err := c.Submit(context.Background(), Request{
		SourceCode: "print(input())",
		Stdin:      "42",
		LanguageID: 71,
		Limits:     domain.Limits{CPUTimeSeconds: 2, MemoryKB: 128000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("token = %q", token)
	}

	src, _ := base64.StdEncoding.DecodeString(got.SourceCode)
	stdin, _ := base64.StdEncoding.DecodeString(got.Stdin)
	if string(src) != "print(input())" || string(stdin) != "42" {
		t.Errorf("payload not base64 encoded: %+v", got)
	}
	if got.LanguageID != 71 || got.CPUTimeLimit != 2 || got.MemoryLimit != 128000 {
		t.Errorf("limits = %+v", got)
	}
	if got.WallTimeLimit != 4 {
		t.Errorf("wall time = %v, want cpu + slack = 4", got.WallTimeLimit)
	}
	if got.MaxProcessesAndOrThreads != 60 || got.MaxFileSize != 1024 {
		t.Errorf("caps = %+v", got)
	}
	if headers.Get("X-RapidAPI-Key") != "key" || headers.Get("X-RapidAPI-Host") != "judge.test" {
		t.Errorf("auth headers missing: %v", headers)
	}
}

func TestClient_UpstreamRateLimit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.Submit(context.Background(), Request{SourceCode: "x", LanguageID: 71})
	if !errors.Is(err, domain.ErrUpstreamRateLimit) {
		t.Errorf("expected ErrUpstreamRateLimit, got %v", err)
	}
}

func TestClient_ServerErrorAndMalformed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	if _, err := c.Submit(context.Background(), Request{SourceCode: "x"}); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}

	c = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":`)
	}))
	if _, err := c.Submit(context.Background(), Request{SourceCode: "x"}); !errors.Is(err, domain.ErrMalformedUpstream) {
		t.Errorf("expected ErrMalformedUpstream, got %v", err)
	}

	c = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	if _, err := c.Submit(context.Background(), Request{SourceCode: "x"}); !errors.Is(err, domain.ErrMalformedUpstream) {
		t.Errorf("expected ErrMalformedUpstream for empty token, got %v", err)
	}
}

func TestClient_RunToCompletion(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			io.WriteString(w, `{"token":"tok-run"}`)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/tok-run") {
			t.Errorf("unexpected poll path %s", r.URL.Path)
		}
		if polls.Add(1) < 2 {
			io.WriteString(w, `{"status":{"id":2,"description":"Processing"}}`)
			return
		}
		io.WriteString(w, `{"status":{"id":3,"description":"Accepted"},"stdout":"`+
			base64.StdEncoding.EncodeToString([]byte("42\n"))+`","time":"0.05","memory":2048,"exit_code":0}`)
	}))

	res, err := c.RunToCompletion(context.Background(), Request{SourceCode: "x", Stdin: "42", LanguageID: 71})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.StatusAccepted || res.Stdout != "42\n" {
		t.Errorf("result = %+v", res)
	}
	if res.TimeSeconds != 0.05 || res.MemoryKB != 2048 {
		t.Errorf("time/memory = %v/%d", res.TimeSeconds, res.MemoryKB)
	}
	if polls.Load() != 2 {
		t.Errorf("polls = %d, want 2", polls.Load())
	}
}

func TestClient_RunToCompletion_Timeout(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			io.WriteString(w, `{"token":"tok-slow"}`)
			return
		}
		polls.Add(1)
		io.WriteString(w, `{"status":{"id":1,"description":"In Queue"}}`)
	}))

	_, err := c.RunToCompletion(context.Background(), Request{SourceCode: "x"})
	if !errors.Is(err, domain.ErrExecutionTimeout) {
		t.Fatalf("expected ErrExecutionTimeout, got %v", err)
	}
	if errors.Is(err, domain.ErrUpstreamRateLimit) {
		t.Error("timeout must be distinct from rate limiting")
	}
	if polls.Load() != 3 {
		t.Errorf("polls = %d, want the attempt bound of 3", polls.Load())
	}
}

func TestClient_RunToCompletion_MissingStatusKeepsPolling(t *testing.T) {
	for name, body := range map[string]string{
		"zero id":   `{"status":{"id":0}}`,
		"no status": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			var polls atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPost {
					io.WriteString(w, `{"token":"t"}`)
					return
				}
				polls.Add(1)
				io.WriteString(w, body)
			}))

			res, err := c.RunToCompletion(context.Background(), Request{SourceCode: "x"})
			if !errors.Is(err, domain.ErrExecutionTimeout) {
				t.Fatalf("expected ErrExecutionTimeout, got res=%+v err=%v", res, err)
			}
			if polls.Load() != 3 {
				t.Errorf("polls = %d, want 3", polls.Load())
			}
		})
	}
}

func TestClient_RunCancelledByCaller(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			io.WriteString(w, `{"token":"tok-c"}`)
			return
		}
		io.WriteString(w, `{"status":{"id":2}}`)
	}))
	c.cfg.PollInterval = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	run := c.Start(ctx, Request{SourceCode: "x"})
	cancel()

	_, err := run.Wait(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, domain.ErrExecutionTimeout) {
		t.Error("caller cancellation is not an execution timeout")
	}
}

func TestFake_Programmed(t *testing.T) {
	f := NewFake().
		On("bad", domain.ExecutionResult{Status: domain.StatusRuntimeNZEC, Stderr: "boom"}).
		On("slow", domain.ExecutionResult{Status: domain.StatusProcessing}).
		FailOn("down", domain.ErrUpstreamUnavailable)
	ctx := context.Background()

	res, err := f.RunToCompletion(ctx, Request{Stdin: "echo"})
	if err != nil || res.Status != domain.StatusAccepted || res.Stdout != "echo" {
		t.Errorf("default = %+v, %v", res, err)
	}
	res, _ = f.RunToCompletion(ctx, Request{Stdin: "bad"})
	if res.Status != domain.StatusRuntimeNZEC || res.StatusID != 11 {
		t.Errorf("programmed = %+v", res)
	}
	if _, err := f.RunToCompletion(ctx, Request{Stdin: "slow"}); !errors.Is(err, domain.ErrExecutionTimeout) {
		t.Errorf("slow = %v", err)
	}
	if _, err := f.RunToCompletion(ctx, Request{Stdin: "down"}); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("down = %v", err)
	}

	token, _ := f.Submit(ctx, Request{Stdin: "bad"})
	raw, err := f.Poll(ctx, token)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if got := Interpret(raw); got.Status != domain.StatusRuntimeNZEC || got.Stderr != "boom" {
		t.Errorf("polled = %+v", got)
	}
	if f.CallCount() != 5 {
		t.Errorf("calls = %d, want 5", f.CallCount())
	}
}
