// internal/workers/agents/content-pack-generator/config.go
package contentpackgenerator

import (
	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
)

type Config struct {
	Core       invoker.Config
	Legal      invoker.Config
	Components invoker.Config
	// MaxConcurrency caps the sub-generation batch.
	MaxConcurrency int
}

func LoadConfig(cfg *config.Config) *Config {
	base := invoker.ConfigFrom(config.GetAgentConfig(cfg, AgentName))

	// legal and component copy are much smaller than the page content
	small := base
	if small.MaxTokens > 4096 {
		small.MaxTokens = 4096
	}

	return &Config{
		Core:           base,
		Legal:          small,
		Components:     small,
		MaxConcurrency: 3,
	}
}
