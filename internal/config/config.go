package config

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"shortcutreport/internal/domain"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

type Config struct {
	ShortcutAPIToken string `yaml:"shortcut_api_token"`
	ShortcutBaseURL  string `yaml:"shortcut_base_url"`
	ShortcutPageSize int    `yaml:"shortcut_page_size"`
	ShortcutMaxPages int    `yaml:"shortcut_max_pages"`

	LLMProvider            string   `yaml:"llm_provider"`
	LLMModel               string   `yaml:"llm_model"`
	LLMTemperature         *float64 `yaml:"llm_temperature"` // nil when unset
	LLMRequestDelaySeconds int      `yaml:"llm_request_delay_seconds"`
	OpenAIAPIKey           string   `yaml:"openai_api_key"`
	OpenAIOrgID            string   `yaml:"openai_org_id"`
	OpenAIBaseURL          string   `yaml:"openai_base_url"`
	PortkeyAPIKey          string   `yaml:"portkey_api_key"`
	PortkeyVirtualKey      string   `yaml:"portkey_virtual_key"`
	PortkeyBaseURL         string   `yaml:"portkey_base_url"`
	AnthropicAPIKey        string   `yaml:"anthropic_api_key"`

	ReportOutputDir            string `yaml:"report_output_dir"`
	DBPath                     string `yaml:"db_path"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`
	DogfoodingFormURL          string `yaml:"dogfooding_form_url"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	ScheduleWeeklyGo   string `yaml:"schedule_weekly_go"`
	ScheduleWeeklyDone string `yaml:"schedule_weekly_done"`
	ScheduleTimezone   string `yaml:"schedule_timezone"`

	// Tracker id to display name tables. done_teams falls back to teams.
	Teams            map[string]string `yaml:"teams"`
	DoneTeams        map[string]string `yaml:"done_teams"`
	DailyStates      map[string]string `yaml:"daily_states"`
	GoStateID        string            `yaml:"go_state_id"`
	GoStates         map[string]string `yaml:"go_states"`
	DoneStates       map[string]string `yaml:"done_states"`
	DoneTargetStates []string          `yaml:"done_target_states"`

	Location *time.Location `yaml:"-"` // computed from ScheduleTimezone
}

func LoadConfig() Config {
	_ = godotenv.Load()

	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.ShortcutAPIToken, "SHORTCUT_API_KEY")
	envOverride(&cfg.ShortcutAPIToken, "SHORTCUT_API_TOKEN")
	envOverride(&cfg.ShortcutBaseURL, "SHORTCUT_BASE_URL")
	envOverrideInt(&cfg.ShortcutPageSize, "SHORTCUT_PAGE_SIZE")
	envOverrideInt(&cfg.ShortcutMaxPages, "SHORTCUT_MAX_PAGES")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideFloat(&cfg.LLMTemperature, "LLM_TEMPERATURE")
	envOverrideInt(&cfg.LLMRequestDelaySeconds, "LLM_REQUEST_DELAY_SECONDS")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.OpenAIOrgID, "OPENAI_ORG_KEY")
	envOverride(&cfg.OpenAIOrgID, "OPENAI_ORG_ID")
	envOverride(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	envOverride(&cfg.PortkeyAPIKey, "PORTKEY_API_KEY")
	envOverride(&cfg.PortkeyVirtualKey, "GOOGLE_VIRTUAL_KEY")
	envOverride(&cfg.PortkeyVirtualKey, "PORTKEY_VIRTUAL_KEY")
	envOverride(&cfg.PortkeyBaseURL, "PORTKEY_BASE_URL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.DogfoodingFormURL, "DOGFOODING_FORM_URL")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.ScheduleWeeklyGo, "SCHEDULE_WEEKLY_GO")
	envOverride(&cfg.ScheduleWeeklyDone, "SCHEDULE_WEEKLY_DONE")
	envOverride(&cfg.ScheduleTimezone, "SCHEDULE_TIMEZONE")
	envOverride(&cfg.GoStateID, "GO_STATE_ID")
	if ids := os.Getenv("DONE_TARGET_STATES"); ids != "" {
		cfg.DoneTargetStates = splitList(ids)
	}

	if cfg.ShortcutBaseURL == "" {
		cfg.ShortcutBaseURL = "https://api.app.shortcut.com"
	}
	if cfg.ShortcutPageSize == 0 {
		cfg.ShortcutPageSize = 25
	}
	if cfg.ShortcutMaxPages == 0 {
		cfg.ShortcutMaxPages = 10
	}
	if cfg.LLMRequestDelaySeconds == 0 {
		cfg.LLMRequestDelaySeconds = 3
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./shortcut-report.db"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.ScheduleTimezone == "" {
		cfg.ScheduleTimezone = "UTC"
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))

	switch cfg.LLMProvider {
	case "", "openai", "portkey", "anthropic", "none":
	default:
		log.Fatalf("llm_provider must be one of openai, portkey, anthropic or none, got '%s'", cfg.LLMProvider)
	}
	if cfg.ShortcutPageSize < 1 || cfg.ShortcutPageSize > 25 {
		log.Fatalf("invalid shortcut_page_size '%d': must be between 1 and 25", cfg.ShortcutPageSize)
	}
	if cfg.ShortcutMaxPages < 1 {
		log.Fatalf("invalid shortcut_max_pages '%d': must be >= 1", cfg.ShortcutMaxPages)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if t := cfg.LLMTemperature; t != nil && (*t < 0 || *t > 2) {
		log.Fatalf("invalid llm_temperature '%f': must be between 0 and 2", *t)
	}

	if strings.EqualFold(cfg.ScheduleTimezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.ScheduleTimezone)
		if err != nil {
			log.Fatalf("invalid schedule_timezone '%s': %v", cfg.ScheduleTimezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field **float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = &parsed
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RequestDelay is the pause before each LLM call. A negative setting
// disables pacing.
func (c Config) RequestDelay() time.Duration {
	if c.LLMRequestDelaySeconds < 0 {
		return 0
	}
	return time.Duration(c.LLMRequestDelaySeconds) * time.Second
}

func (c Config) RequireTracker() error {
	if strings.TrimSpace(c.ShortcutAPIToken) == "" {
		return fmt.Errorf("shortcut_api_token is not set (config.yaml, SHORTCUT_API_TOKEN or SHORTCUT_API_KEY)")
	}
	return nil
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}

func (c Config) DailyMappings() (domain.Mappings, error) {
	if len(c.DailyStates) == 0 {
		return domain.Mappings{}, fmt.Errorf("daily_states is empty")
	}
	return domain.Mappings{Teams: c.Teams, States: c.DailyStates}, nil
}

func (c Config) GoMappings() (domain.Mappings, error) {
	if c.GoStateID == "" {
		return domain.Mappings{}, fmt.Errorf("go_state_id is not set")
	}
	if len(c.GoStates) == 0 {
		return domain.Mappings{}, fmt.Errorf("go_states is empty")
	}
	if len(c.Teams) == 0 {
		return domain.Mappings{}, fmt.Errorf("teams is empty; the weekly GO report only lists mapped teams")
	}
	if _, ok := c.GoStates[c.GoStateID]; !ok {
		return domain.Mappings{}, fmt.Errorf("go_state_id %s has no label in go_states", c.GoStateID)
	}
	return domain.Mappings{Teams: c.Teams, States: c.GoStates}, nil
}

func (c Config) DoneMappings() (domain.Mappings, error) {
	if c.GoStateID == "" {
		return domain.Mappings{}, fmt.Errorf("go_state_id is not set")
	}
	if len(c.DoneTargetStates) == 0 {
		return domain.Mappings{}, fmt.Errorf("done_target_states is empty")
	}
	var missing []string
	for _, id := range c.DoneTargetStates {
		if _, ok := c.DoneStates[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return domain.Mappings{}, fmt.Errorf("done_target_states without a label in done_states: %s", strings.Join(missing, ", "))
	}
	teams := c.DoneTeams
	if len(teams) == 0 {
		teams = c.Teams
	}
	return domain.Mappings{Teams: teams, States: c.DoneStates}, nil
}
