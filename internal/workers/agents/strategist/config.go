// internal/workers/agents/strategist/config.go
package strategist

import (
	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
)

type Config struct {
	Invoker invoker.Config
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Invoker: invoker.ConfigFrom(config.GetAgentConfig(cfg, AgentName)),
	}
}
