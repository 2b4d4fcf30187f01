// internal/models/run.go
package models

import "time"

// File type tags.
const (
	FileTypePage      = "page"
	FileTypeComponent = "component"
	FileTypeUtility   = "utility"
	FileTypeConfig    = "config"
)

// GeneratedFile is produced only by the code renderer.
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Dependency is an external package the rendered site needs.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// EnvVar is an environment variable the rendered site reads.
type EnvVar struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Pipeline phases.
const (
	PhaseCacheCheck        = "cache_check"
	PhaseStrategy          = "strategy"
	PhaseContentGeneration = "content_generation"
	PhaseReview            = "review"
	PhaseCodeRendering     = "code_rendering"
	PhaseAssembly          = "assembly"
	PhaseDone              = "done"
	PhaseFailed            = "failed"
)

// PipelineError is one entry in a run's error list.
type PipelineError struct {
	Agent       string    `json:"agent,omitempty"`
	Phase       string    `json:"phase"`
	Code        string    `json:"code"`
	Message     string    `json:"message"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
}

// PhaseMetrics accumulates per-phase cost.
type PhaseMetrics struct {
	Duration     time.Duration `json:"duration"`
	InputTokens  int           `json:"inputTokens"`
	OutputTokens int           `json:"outputTokens"`
	Invocations  int           `json:"invocations"`
}

// PipelineRun is the mutable state of one run, owned by the orchestrator.
type PipelineRun struct {
	ID              string                   `json:"id"`
	ProjectID       string                   `json:"projectId"`
	Phase           string                   `json:"phase"`
	StartedAt       time.Time                `json:"startedAt"`
	FinishedAt      time.Time                `json:"finishedAt,omitempty"`
	CompletedAgents []string                 `json:"completedAgents"`
	PendingAgents   []string                 `json:"pendingAgents"`
	Errors          []PipelineError          `json:"errors"`
	Phases          map[string]*PhaseMetrics `json:"phases"`
	ContentAttempts int                      `json:"contentAttempts"`
	CacheHit        bool                     `json:"cacheHit"`
	Success         bool                     `json:"success"`
	ContentHash     string                   `json:"contentHash,omitempty"`
	FinalScore      float64                  `json:"finalScore,omitempty"`
}

// NewPipelineRun creates a run in the cache check phase.
func NewPipelineRun(id, projectID string, agents []string) *PipelineRun {
	return &PipelineRun{
		ID:            id,
		ProjectID:     projectID,
		Phase:         PhaseCacheCheck,
		StartedAt:     time.Now().UTC(),
		PendingAgents: append([]string(nil), agents...),
		Phases:        make(map[string]*PhaseMetrics),
	}
}

// PhaseStats returns the metrics bucket for a phase, creating it if needed.
func (r *PipelineRun) PhaseStats(phase string) *PhaseMetrics {
	m, ok := r.Phases[phase]
	if !ok {
		m = &PhaseMetrics{}
		r.Phases[phase] = m
	}
	return m
}

// CompleteAgent moves an agent from pending to completed.
func (r *PipelineRun) CompleteAgent(agent string) {
	for _, a := range r.CompletedAgents {
		if a == agent {
			return
		}
	}
	r.CompletedAgents = append(r.CompletedAgents, agent)
	pending := r.PendingAgents[:0]
	for _, a := range r.PendingAgents {
		if a != agent {
			pending = append(pending, a)
		}
	}
	r.PendingAgents = pending
}

// HasFatal reports whether any recorded error is unrecoverable.
func (r *PipelineRun) HasFatal() bool {
	for _, e := range r.Errors {
		if !e.Recoverable {
			return true
		}
	}
	return false
}

// RunMetrics summarises a finished run.
type RunMetrics struct {
	CacheHit          bool                    `json:"cacheHit"`
	TotalDuration     time.Duration           `json:"totalDuration"`
	ContentAttempts   int                     `json:"contentAttempts"`
	TotalInputTokens  int                     `json:"totalInputTokens"`
	TotalOutputTokens int                     `json:"totalOutputTokens"`
	Phases            map[string]PhaseMetrics `json:"phases"`
}

// PipelineResult is returned to the caller of a run. Files are present only
// on success.
type PipelineResult struct {
	Success        bool            `json:"success"`
	RunID          string          `json:"runId"`
	ProjectID      string          `json:"projectId"`
	ContentPack    *ContentPack    `json:"contentPack,omitempty"`
	GeneratedFiles []GeneratedFile `json:"generatedFiles,omitempty"`
	Dependencies   []Dependency    `json:"dependencies,omitempty"`
	EnvVars        []EnvVar        `json:"envVars,omitempty"`
	TodoMarkers    []TodoMarker    `json:"todoMarkers,omitempty"`
	Verdict        *EditorVerdict  `json:"verdict,omitempty"`
	Metrics        RunMetrics      `json:"metrics"`
	Errors         []PipelineError `json:"errors"`
}

// RequiredTodos returns the markers flagged as required.
func (r *PipelineResult) RequiredTodos() []TodoMarker {
	var out []TodoMarker
	for _, m := range r.TodoMarkers {
		if m.Required {
			out = append(out, m)
		}
	}
	return out
}
