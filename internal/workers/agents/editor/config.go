// internal/workers/agents/editor/config.go
package editor

import (
	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
)

type Config struct {
	Invoker invoker.Config
	// MaxFileBytes truncates each rendered file sent for code review.
	MaxFileBytes int
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Invoker:      invoker.ConfigFrom(config.GetAgentConfig(cfg, AgentName)),
		MaxFileBytes: 4000,
	}
}
