package config

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	t.Setenv("SHORTCUT_API_KEY", "sc-legacy")
	t.Setenv("PORTKEY_API_KEY", "pk-test")
	t.Setenv("GOOGLE_VIRTUAL_KEY", "vk-test")
	t.Setenv("DONE_TARGET_STATES", "500, 600,,700")
	t.Setenv("LLM_TEMPERATURE", "")

	cfg := LoadConfig()

	if cfg.ShortcutAPIToken != "sc-legacy" {
		t.Fatalf("expected token from SHORTCUT_API_KEY, got %q", cfg.ShortcutAPIToken)
	}
	if cfg.PortkeyAPIKey != "pk-test" || cfg.PortkeyVirtualKey != "vk-test" {
		t.Fatalf("unexpected portkey settings: %q %q", cfg.PortkeyAPIKey, cfg.PortkeyVirtualKey)
	}
	if cfg.ShortcutBaseURL != "https://api.app.shortcut.com" || cfg.ShortcutPageSize != 25 || cfg.ShortcutMaxPages != 10 {
		t.Fatalf("unexpected shortcut defaults: %+v", cfg)
	}
	if cfg.DBPath != "./shortcut-report.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.ReportOutputDir != "./reports" {
		t.Fatalf("unexpected report output dir default: %q", cfg.ReportOutputDir)
	}
	if cfg.ExternalHTTPTimeoutSeconds != int(defaultExternalHTTPTimeout/time.Second) {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.LLMTemperature != nil {
		t.Fatalf("unset llm_temperature must stay nil, got %v", *cfg.LLMTemperature)
	}
	if cfg.RequestDelay() != 3*time.Second {
		t.Fatalf("unexpected request delay: %s", cfg.RequestDelay())
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if strings.Join(cfg.DoneTargetStates, ",") != "500,600,700" {
		t.Fatalf("unexpected target states: %v", cfg.DoneTargetStates)
	}
	if err := cfg.RequireTracker(); err != nil {
		t.Fatalf("RequireTracker: %v", err)
	}
	if cfg.SlackConfigured() {
		t.Fatal("slack must not be configured without a token")
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
shortcut_api_token: "yaml-token"
llm_provider: "Anthropic"
anthropic_api_key: "yaml-anthropic"
report_output_dir: "/tmp/yaml-reports"
db_path: "/tmp/yaml.db"
llm_request_delay_seconds: -1
llm_temperature: 0
schedule_timezone: "Europe/Berlin"
teams:
  "team-a": "Alpha Squad"
daily_states:
  "500000516": "Started work"
go_state_id: "500028067"
go_states:
  "500028067": "Go"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("SHORTCUT_API_TOKEN", "env-token")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("LLM_TEMPERATURE", "")
	t.Setenv("EXTERNAL_HTTP_TIMEOUT_SECONDS", "120")

	cfg := LoadConfig()

	if cfg.ShortcutAPIToken != "env-token" {
		t.Fatalf("expected token from env override, got %q", cfg.ShortcutAPIToken)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Fatalf("expected normalized provider, got %q", cfg.LLMProvider)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected db path from env override, got %q", cfg.DBPath)
	}
	if cfg.ReportOutputDir != "/tmp/yaml-reports" {
		t.Fatalf("expected report output dir from yaml, got %q", cfg.ReportOutputDir)
	}
	if cfg.ExternalHTTPTimeoutSeconds != 120 {
		t.Fatalf("expected external HTTP timeout from env override, got %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.LLMTemperature == nil || *cfg.LLMTemperature != 0 {
		t.Fatalf("explicit llm_temperature 0 must be kept, got %v", cfg.LLMTemperature)
	}
	if cfg.RequestDelay() != 0 {
		t.Fatalf("negative delay should disable pacing, got %s", cfg.RequestDelay())
	}
	if cfg.Location.String() != "Europe/Berlin" {
		t.Fatalf("unexpected location: %s", cfg.Location)
	}

	daily, err := cfg.DailyMappings()
	if err != nil {
		t.Fatalf("DailyMappings: %v", err)
	}
	if label, ok := daily.StateLabel("500000516"); !ok || label != "Started work" {
		t.Fatalf("unexpected daily state label %q", label)
	}
	goMap, err := cfg.GoMappings()
	if err != nil {
		t.Fatalf("GoMappings: %v", err)
	}
	if name, _ := goMap.TeamName("team-a"); name != "Alpha Squad" {
		t.Fatalf("unexpected team name %q", name)
	}
	if _, err := cfg.DoneMappings(); err == nil {
		t.Fatal("expected DoneMappings to fail without target states")
	}
}

func TestMappingValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		check   func(Config) error
		wantErr string
	}{
		{"daily needs states", Config{}, func(c Config) error { _, err := c.DailyMappings(); return err }, "daily_states"},
		{"go needs state id", Config{GoStates: map[string]string{"1": "Go"}}, func(c Config) error { _, err := c.GoMappings(); return err }, "go_state_id"},
		{"go state must be labelled", Config{GoStateID: "2", GoStates: map[string]string{"1": "Go"}, Teams: map[string]string{"t": "T"}}, func(c Config) error { _, err := c.GoMappings(); return err }, "no label"},
		{"go needs teams", Config{GoStateID: "1", GoStates: map[string]string{"1": "Go"}}, func(c Config) error { _, err := c.GoMappings(); return err }, "teams"},
		{"done targets labelled", Config{GoStateID: "1", DoneTargetStates: []string{"7", "5"}, DoneStates: map[string]string{"5": "Done"}}, func(c Config) error { _, err := c.DoneMappings(); return err }, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDoneMappingsFallsBackToTeams(t *testing.T) {
	cfg := Config{
		GoStateID:        "1",
		Teams:            map[string]string{"t": "Shared"},
		DoneStates:       map[string]string{"5": "Done"},
		DoneTargetStates: []string{"5"},
	}
	m, err := cfg.DoneMappings()
	if err != nil {
		t.Fatalf("DoneMappings: %v", err)
	}
	if name, _ := m.TeamName("t"); name != "Shared" {
		t.Fatalf("expected shared teams, got %q", name)
	}
	cfg.DoneTeams = map[string]string{"t": "Done Only"}
	m, _ = cfg.DoneMappings()
	if name, _ := m.TeamName("t"); name != "Done Only" {
		t.Fatalf("expected done_teams to win, got %q", name)
	}
}

func TestRequireTracker(t *testing.T) {
	if err := (Config{ShortcutAPIToken: "  "}).RequireTracker(); err == nil {
		t.Fatal("expected missing token error")
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	s := "initial"
	t.Setenv("SR_TEST_STR", "value")
	envOverride(&s, "SR_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	i := 1
	t.Setenv("SR_TEST_INT", "42")
	envOverrideInt(&i, "SR_TEST_INT")
	if i != 42 {
		t.Fatalf("envOverrideInt failed, got %d", i)
	}

	var f *float64
	envOverrideFloat(&f, "SR_TEST_FLOAT_UNSET")
	if f != nil {
		t.Fatalf("envOverrideFloat must leave an unset value nil, got %v", *f)
	}
	t.Setenv("SR_TEST_FLOAT", "0")
	envOverrideFloat(&f, "SR_TEST_FLOAT")
	if f == nil || *f != 0 {
		t.Fatalf("envOverrideFloat must keep an explicit zero, got %v", f)
	}
}

func TestLoadConfigInvalidTimezoneFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_TZ_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("SCHEDULE_TIMEZONE", "Mars/Colony")
		LoadConfig()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoadConfigInvalidTimezoneFatal")
	cmd.Env = append(os.Environ(), "TEST_INVALID_TZ_FATAL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}

func TestLoadConfigInvalidProviderFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_PROVIDER_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("LLM_PROVIDER", "gemini")
		LoadConfig()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoadConfigInvalidProviderFatal")
	cmd.Env = append(os.Environ(), "TEST_INVALID_PROVIDER_FATAL=1")
	if err := cmd.Run(); err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
}
