// internal/workers/agents/code-renderer/config.go
package coderenderer

import (
	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
)

// Rendering modes.
const (
	ModeTemplate = "template"
	ModeModel    = "model"
)

type Config struct {
	Mode           string
	Invoker        invoker.Config
	MaxConcurrency int
}

func LoadConfig(cfg *config.Config) *Config {
	mode := cfg.Pipeline.RendererMode
	if mode == "" {
		mode = ModeTemplate
	}
	return &Config{
		Mode:           mode,
		Invoker:        invoker.ConfigFrom(config.GetAgentConfig(cfg, AgentName)),
		MaxConcurrency: cfg.Pipeline.MaxConcurrency,
	}
}
