// internal/workers/site-generation/generate-site/config.go
package generatesite

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	OutputDir     string        `mapstructure:"output_dir"`
	// WriteArtifacts disables disk output when false; the job then only
	// reports the run summary.
	WriteArtifacts bool `mapstructure:"write_artifacts"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  2,
		Timeout:        15 * time.Minute,
		OutputDir:      "./output",
		WriteArtifacts: true,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.WriteArtifacts && c.OutputDir == "" {
		return fmt.Errorf("output_dir is required when write_artifacts is set")
	}
	return nil
}
