package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Personal assistant specifics
	Notion         NotionConfig
	GoogleCalendar GoogleCalendarConfig
	Agent          AgentConfig
	Gateway        GatewayConfig

	// LLM Provider Abstraction
	LLM LLMConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// NotionConfig holds the Notion integration token and target database IDs.
type NotionConfig struct {
	APIKey        string
	TaskDBID      string
	ChecklistDBID string
	ExpenseDBID   string
}

// GoogleCalendarConfig holds OAuth client and token storage settings.
type GoogleCalendarConfig struct {
	ClientSecretPath string
	TokenPath        string
	CalendarID       string
}

// AgentConfig bounds the reasoning loop.
type AgentConfig struct {
	Timezone          string
	MaxToolIterations int
	ToolTimeout       time.Duration
	SessionTTL        time.Duration
	MaxSessions       int
}

// GatewayConfig bounds tool invocation concurrency.
type GatewayConfig struct {
	AdapterConcurrency  int
	QueueWait           time.Duration
	HealthCheckInterval time.Duration
}

// LLMConfig holds configuration for the LLM provider abstraction layer
type LLMConfig struct {
	Providers       []ProviderConfig `yaml:"providers"`
	FallbackEnabled bool             `yaml:"fallback_enabled"`
	RetryAttempts   int              `yaml:"retry_attempts"`
	RetryDelay      string           `yaml:"retry_delay"`
	MaxTotalTimeout string           `yaml:"max_total_timeout"`
}

// ProviderConfig holds configuration for a single LLM provider
type ProviderConfig struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	Priority int    `yaml:"priority"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Notion
	cfg.Notion.APIKey = expandEnvVar(viper.GetString("notion.api_key"))
	cfg.Notion.TaskDBID = viper.GetString("notion.task_db_id")
	cfg.Notion.ChecklistDBID = viper.GetString("notion.checklist_db_id")
	cfg.Notion.ExpenseDBID = viper.GetString("notion.expense_db_id")
	if notionKey := viper.GetString("notion_api_key"); notionKey != "" {
		cfg.Notion.APIKey = notionKey
	}

	// Google Calendar
	cfg.GoogleCalendar.ClientSecretPath = viper.GetString("google_calendar.client_secret_path")
	cfg.GoogleCalendar.TokenPath = viper.GetString("google_calendar.token_path")
	cfg.GoogleCalendar.CalendarID = viper.GetString("google_calendar.calendar_id")
	if googleCreds := viper.GetString("google_calendar_credentials"); googleCreds != "" {
		cfg.GoogleCalendar.ClientSecretPath = googleCreds
	}

	// Agent loop bounds
	cfg.Agent.Timezone = viper.GetString("agent.timezone")
	cfg.Agent.MaxToolIterations = viper.GetInt("agent.max_tool_iterations")
	cfg.Agent.ToolTimeout = viper.GetDuration("agent.tool_timeout")
	cfg.Agent.SessionTTL = viper.GetDuration("agent.session_ttl")
	cfg.Agent.MaxSessions = viper.GetInt("agent.max_sessions")

	// Gateway backpressure
	cfg.Gateway.AdapterConcurrency = viper.GetInt("gateway.adapter_concurrency")
	cfg.Gateway.QueueWait = viper.GetDuration("gateway.queue_wait")
	cfg.Gateway.HealthCheckInterval = viper.GetDuration("gateway.health_check_interval")

	// LLM Provider Abstraction
	cfg.LLM.FallbackEnabled = viper.GetBool("llm.fallback_enabled")
	cfg.LLM.RetryAttempts = viper.GetInt("llm.retry_attempts")
	cfg.LLM.RetryDelay = viper.GetString("llm.retry_delay")
	cfg.LLM.MaxTotalTimeout = viper.GetString("llm.max_total_timeout")

	// Load provider configurations
	if viper.IsSet("llm.providers") {
		providersRaw := viper.Get("llm.providers")
		if providersList, ok := providersRaw.([]interface{}); ok {
			for _, p := range providersList {
				if providerMap, ok := p.(map[string]interface{}); ok {
					provider := ProviderConfig{
						Name:     getStringFromMap(providerMap, "name"),
						Enabled:  getBoolFromMap(providerMap, "enabled"),
						Priority: getIntFromMap(providerMap, "priority"),
						APIKey:   expandEnvVar(getStringFromMap(providerMap, "api_key")),
						BaseURL:  getStringFromMap(providerMap, "base_url"),
						Model:    getStringFromMap(providerMap, "model"),
						Timeout:  getStringFromMap(providerMap, "timeout"),
					}
					cfg.LLM.Providers = append(cfg.LLM.Providers, provider)
				}
			}
		}
	}

	if len(cfg.LLM.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured - please add llm.providers section to config.yaml")
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("google_calendar.token_path", "token.json")
	viper.SetDefault("google_calendar.calendar_id", "primary")

	viper.SetDefault("agent.timezone", "UTC")
	viper.SetDefault("agent.max_tool_iterations", 5)
	viper.SetDefault("agent.tool_timeout", 30*time.Second)
	viper.SetDefault("agent.session_ttl", 10*time.Minute)
	viper.SetDefault("agent.max_sessions", 1024)

	viper.SetDefault("gateway.adapter_concurrency", 4)
	viper.SetDefault("gateway.queue_wait", 10*time.Second)
	viper.SetDefault("gateway.health_check_interval", 30*time.Second)

	// LLM defaults
	viper.SetDefault("llm.fallback_enabled", true)
	viper.SetDefault("llm.retry_attempts", 3)
	viper.SetDefault("llm.retry_delay", "1s")
	viper.SetDefault("llm.max_total_timeout", "60s")
}

// expandEnvVar expands environment variables in the format ${VAR_NAME}
func expandEnvVar(value string) string {
	if value == "" {
		return value
	}

	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envValue := viper.GetString(envVar); envValue != "" {
			return envValue
		}
		if envValue := viper.GetString(strings.ToLower(envVar)); envValue != "" {
			return envValue
		}
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
	}

	return value
}

// Helper functions to safely extract values from map[string]interface{}
func getStringFromMap(m map[string]interface{}, key string) string {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	if val, ok := m[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getIntFromMap(m map[string]interface{}, key string) int {
	if val, ok := m[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
		if f, ok := val.(float64); ok {
			return int(f)
		}
	}
	return 0
}
