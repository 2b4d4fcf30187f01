// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Agent names used as keys in the agents section.
const (
	AgentStrategist   = "strategist"
	AgentContentPack  = "content-pack"
	AgentEditor       = "editor"
	AgentCodeRenderer = "code-renderer"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg, v)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		for _, name := range []string{"LLM_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GENAI_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.LLM.APIKey = val
				break
			}
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
// Fields where zero is meaningful only take a default when the key is absent.
func applyDefaults(cfg *Config, v *viper.Viper) {
	unset := func(key string) bool {
		return v == nil || !v.IsSet(key)
	}

	if cfg.App.Name == "" {
		cfg.App.Name = "site-pipeline"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 600000
	}

	// Camunda defaults
	if cfg.Camunda.JobType == "" {
		cfg.Camunda.JobType = "site.generate"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 2
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 900000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.AuditIndex == "" {
		cfg.Database.Elasticsearch.AuditIndex = "site-pipeline-audit"
	}
	if cfg.Database.Redis.KeyPrefix == "" {
		cfg.Database.Redis.KeyPrefix = "contentpack:"
	}

	// Model provider defaults
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gateway"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120000
	}

	if cfg.Agents == nil {
		cfg.Agents = make(map[string]AgentConfig)
	}
	for _, name := range []string{AgentStrategist, AgentContentPack, AgentEditor, AgentCodeRenderer} {
		agent := cfg.Agents[name]
		def := DefaultAgentConfig(name)
		if agent.Model == "" {
			agent.Model = cfg.LLM.Model
		}
		if agent.MaxTokens == 0 {
			agent.MaxTokens = def.MaxTokens
		}
		if agent.Timeout == 0 {
			agent.Timeout = def.Timeout
		}
		if agent.Temperature == 0 && unset("agents."+name+".temperature") {
			agent.Temperature = def.Temperature
		}
		if agent.MaxRetries == 0 && unset("agents."+name+".max_retries") {
			agent.MaxRetries = def.MaxRetries
		}
		cfg.Agents[name] = agent
	}

	// Pipeline defaults
	if cfg.Pipeline.MaxRevisions == 0 && unset("pipeline.max_revisions") {
		cfg.Pipeline.MaxRevisions = 2
	}
	if cfg.Pipeline.QualityThreshold == 0 {
		cfg.Pipeline.QualityThreshold = 8.0
	}
	if cfg.Pipeline.CacheTTL == 0 {
		cfg.Pipeline.CacheTTL = int((24 * time.Hour).Milliseconds())
	}
	if cfg.Pipeline.MaxConcurrency == 0 {
		cfg.Pipeline.MaxConcurrency = 4
	}
	if cfg.Pipeline.TaskTimeout == 0 {
		cfg.Pipeline.TaskTimeout = 180000
	}
	if cfg.Pipeline.RendererMode == "" {
		cfg.Pipeline.RendererMode = "template"
	}
	if cfg.Pipeline.PackVersion == "" {
		cfg.Pipeline.PackVersion = "1.0.0"
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.LLM.Provider {
	case "gateway":
		if cfg.LLM.BaseURL == "" {
			return fmt.Errorf("llm.base_url is required for the gateway provider")
		}
	case "openai", "gemini":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for the %s provider", cfg.LLM.Provider)
		}
	default:
		return fmt.Errorf("llm.provider %q is not supported", cfg.LLM.Provider)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Pipeline.MaxRevisions < 0 {
		return fmt.Errorf("pipeline.max_revisions must not be negative")
	}
	for name, agent := range cfg.Agents {
		if agent.MaxRetries < 0 {
			return fmt.Errorf("agents.%s.max_retries must not be negative", name)
		}
		if agent.Temperature < 0 {
			return fmt.Errorf("agents.%s.temperature must not be negative", name)
		}
	}
	if cfg.Pipeline.QualityThreshold < 1 || cfg.Pipeline.QualityThreshold > 10 {
		return fmt.Errorf("pipeline.quality_threshold must be between 1 and 10")
	}
	if cfg.Pipeline.RendererMode != "template" && cfg.Pipeline.RendererMode != "model" {
		return fmt.Errorf("pipeline.renderer_mode must be template or model")
	}

	if cfg.Notifications.Enabled && cfg.Notifications.AWS.Region == "" {
		return fmt.Errorf("notifications.aws.region is required when notifications are enabled")
	}
	return nil
}

// DefaultAgentConfig returns the built-in settings for an agent.
func DefaultAgentConfig(name string) AgentConfig {
	switch name {
	case AgentStrategist:
		return AgentConfig{MaxTokens: 4096, Timeout: 90000, Temperature: 0.7, MaxRetries: 2}
	case AgentContentPack:
		return AgentConfig{MaxTokens: 16384, Timeout: 180000, Temperature: 0.6, MaxRetries: 2}
	case AgentEditor:
		return AgentConfig{MaxTokens: 4096, Timeout: 90000, Temperature: 0.2, MaxRetries: 2}
	case AgentCodeRenderer:
		return AgentConfig{MaxTokens: 16384, Timeout: 180000, Temperature: 0.1, MaxRetries: 1}
	default:
		return AgentConfig{MaxTokens: 4096, Timeout: 60000, Temperature: 0.5, MaxRetries: 2}
	}
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetAgentConfig retrieves agent-specific configuration with fallback to defaults
func GetAgentConfig(cfg *Config, agentName string) AgentConfig {
	if agent, exists := cfg.Agents[agentName]; exists {
		return agent
	}
	def := DefaultAgentConfig(agentName)
	def.Model = cfg.LLM.Model
	return def
}
