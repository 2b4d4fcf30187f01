package orchestrator

import (
	"time"

	"site-pipeline/internal/common/config"
)

type Config struct {
	MaxRevisions     int
	QualityThreshold float64
	CacheTTL         time.Duration
	PackVersion      string
	ReviewCode       bool
	// StoreTimeout bounds every pack store and audit call.
	StoreTimeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		MaxRevisions:     cfg.Pipeline.MaxRevisions,
		QualityThreshold: cfg.Pipeline.QualityThreshold,
		CacheTTL:         config.GetDuration(cfg.Pipeline.CacheTTL),
		PackVersion:      cfg.Pipeline.PackVersion,
		ReviewCode:       cfg.Pipeline.ReviewCode,
		StoreTimeout:     5 * time.Second,
	}
}

// maxAttempts is the hard bound on content generation attempts in one run.
func (c *Config) maxAttempts() int {
	if c.MaxRevisions < 0 {
		return 1
	}
	return c.MaxRevisions + 1
}
