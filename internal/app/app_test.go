package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shortcutreport/internal/config"
)

func newShortcutServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/search/stories", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Shortcut-Token") != "sc-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.URL.Query().Get("query"); got != "updated:2024-06-04" {
			t.Errorf("unexpected story query %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": 1, "name": "Fix login", "app_url": "https://app.shortcut.com/s/1", "workflow_state_id": 500, "group_id": "g1", "owner_ids": []string{"m1"}, "description": "d"},
				{"id": 2, "name": "Unmapped state", "app_url": "https://app.shortcut.com/s/2", "workflow_state_id": 999, "group_id": "g1"},
			},
			"next": "",
		})
	})
	mux.HandleFunc("/api/v3/search/epics", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}, "next": ""})
	})
	mux.HandleFunc("/api/v3/members/m1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"profile": map[string]any{"name": "Alice"}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := `shortcut_api_token: sc-token
shortcut_base_url: ` + baseURL + `
teams:
  g1: Core
daily_states:
  "500": Done
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("REPORT_OUTPUT_DIR", filepath.Join(dir, "reports"))
	t.Setenv("DB_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("LLM_PROVIDER", "none")
	for _, key := range []string{"SHORTCUT_API_TOKEN", "SHORTCUT_API_KEY", "SHORTCUT_BASE_URL", "SLACK_BOT_TOKEN", "REPORT_CHANNEL_ID"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestDailyRunWritesReportAndHistory(t *testing.T) {
	srv := newShortcutServer(t)
	dir := setupEnv(t, srv.URL)

	var out bytes.Buffer
	if code := Run(context.Background(), []string{"daily", "2024-06-04"}, &out); code != 0 {
		t.Fatalf("daily exit code = %d, output:\n%s", code, out.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "reports", "2024-06-04.md"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "## Core") || !strings.Contains(string(data), "[Fix login](https://app.shortcut.com/s/1) → **Done** by *Alice*") {
		t.Fatalf("unexpected report:\n%s", data)
	}
	if strings.Contains(string(data), "Unmapped state") {
		t.Fatal("story in an unmapped state must be dropped")
	}
	if _, err := os.Stat(filepath.Join(dir, "reports", "2024-06-04-epic.md")); !os.IsNotExist(err) {
		t.Fatalf("epic report must not be written without epics, stat err=%v", err)
	}
	summary := strings.ToUpper(out.String())
	if !strings.Contains(summary, "TOTAL") || !strings.Contains(out.String(), "Alice") {
		t.Fatalf("expected summary table in output:\n%s", out.String())
	}

	out.Reset()
	if code := Run(context.Background(), []string{"history", "--kind", "daily"}, &out); code != 0 {
		t.Fatalf("history exit code = %d", code)
	}
	if !strings.Contains(out.String(), "daily") || !strings.Contains(out.String(), "2024-06-04.md") {
		t.Fatalf("expected recorded run in history:\n%s", out.String())
	}
}

func TestDailyRunWithNothingToReportFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/search/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}, "next": ""})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	dir := setupEnv(t, srv.URL)

	var out bytes.Buffer
	if code := Run(context.Background(), []string{"daily", "2024-06-04"}, &out); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "reports")); !os.IsNotExist(err) {
		t.Fatalf("no report directory expected, stat err=%v", err)
	}
}

func TestRunRejectsBadInvocations(t *testing.T) {
	srv := newShortcutServer(t)
	setupEnv(t, srv.URL)

	tests := []struct {
		name string
		args []string
	}{
		{"daily without date", []string{"daily"}},
		{"daily with bad date", []string{"daily", "06/04/2024"}},
		{"weekly-go with args", []string{"weekly-go", "extra"}},
		{"unknown command", []string{"monthly"}},
		{"weekly-go without go state", []string{"weekly-go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if code := Run(context.Background(), tt.args, &out); code != 1 {
				t.Fatalf("exit code = %d, want 1", code)
			}
		})
	}
}

func TestHistoryEmpty(t *testing.T) {
	srv := newShortcutServer(t)
	setupEnv(t, srv.URL)

	var out bytes.Buffer
	if code := Run(context.Background(), []string{"history"}, &out); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "No report runs recorded.") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestScheduleWithoutJobsFails(t *testing.T) {
	srv := newShortcutServer(t)
	setupEnv(t, srv.URL)
	t.Setenv("SCHEDULE_WEEKLY_GO", "")
	t.Setenv("SCHEDULE_WEEKLY_DONE", "")

	var out bytes.Buffer
	if code := Run(context.Background(), []string{"schedule"}, &out); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestLLMSettingsDefaultsOpenAITemperature(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIAPIKey = "sk"
	if got := llmSettings(cfg).Temperature; got != 0.7 {
		t.Fatalf("temperature = %v, want 0.7", got)
	}
	low := 0.2
	cfg.LLMTemperature = &low
	if got := llmSettings(cfg).Temperature; got != 0.2 {
		t.Fatalf("temperature = %v, want 0.2", got)
	}
	zero := 0.0
	cfg.LLMTemperature = &zero
	if got := llmSettings(cfg).Temperature; got != 0 {
		t.Fatalf("explicit zero temperature = %v, want 0", got)
	}
	cfg = testConfig()
	cfg.AnthropicAPIKey = "ak"
	if got := llmSettings(cfg).Temperature; got != 0 {
		t.Fatalf("anthropic temperature = %v, want 0", got)
	}
}

func testConfig() config.Config {
	return config.Config{ShortcutAPIToken: "sc-token", LLMRequestDelaySeconds: 3}
}
