// Package errors provides standardized error handling for the site generation pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Agent invocation errors
const (
	ErrCodeTimeout       ErrorCode = "TIMEOUT"
	ErrCodeInvalidOutput ErrorCode = "INVALID_OUTPUT"
	ErrCodeProviderError ErrorCode = "PROVIDER_ERROR"
)

// Pipeline errors
const (
	ErrCodeStructuralValidation  ErrorCode = "STRUCTURAL_VALIDATION_ERROR"
	ErrCodeFatal                 ErrorCode = "FATAL"
	ErrCodeQualityWarning        ErrorCode = "QUALITY_WARNING"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
)

// Infrastructure errors
const (
	ErrCodeCacheReadFailed        ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWriteFailed       ErrorCode = "CACHE_WRITE_FAILED"
	ErrCodeAuditWriteFailed       ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeArtifactWriteFailed    ErrorCode = "ARTIFACT_WRITE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// WithMetadata attaches a metadata key and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Agent Errors
// ==========================

// AgentErrorKind classifies a failed model invocation.
type AgentErrorKind string

const (
	KindTimeout       AgentErrorKind = "Timeout"
	KindInvalidOutput AgentErrorKind = "InvalidOutput"
	KindProviderError AgentErrorKind = "ProviderError"
)

// AgentError is returned by the agent invoker.
type AgentError struct {
	Kind      AgentErrorKind
	Agent     string
	Message   string
	Retryable bool
	Attempts  int
	// RawOutput holds the last model text for InvalidOutput failures so
	// callers can salvage partially valid fields.
	RawOutput string
	Cause     error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s: %s: %s", e.Agent, e.Kind, e.Message)
}

func (e *AgentError) Unwrap() error {
	return e.Cause
}

// Code maps the agent error kind onto a pipeline error code.
func (e *AgentError) Code() ErrorCode {
	switch e.Kind {
	case KindTimeout:
		return ErrCodeTimeout
	case KindInvalidOutput:
		return ErrCodeInvalidOutput
	default:
		return ErrCodeProviderError
	}
}

// ToStandardError converts the agent error into a StandardError.
func (e *AgentError) ToStandardError() *StandardError {
	return &StandardError{
		Code:      e.Code(),
		Message:   fmt.Sprintf("agent %s failed", e.Agent),
		Details:   e.Message,
		Retryable: e.Retryable,
		Metadata: map[string]interface{}{
			"agent":    e.Agent,
			"attempts": e.Attempts,
		},
		Timestamp: time.Now().UTC(),
		Cause:     e,
	}
}

// NewAgentTimeoutError creates a retryable timeout error.
func NewAgentTimeoutError(agent string, timeout time.Duration) *AgentError {
	return &AgentError{
		Kind:      KindTimeout,
		Agent:     agent,
		Message:   fmt.Sprintf("model call exceeded %s", timeout),
		Retryable: true,
	}
}

// NewInvalidOutputError creates a retryable invalid output error.
func NewInvalidOutputError(agent, message, raw string) *AgentError {
	return &AgentError{
		Kind:      KindInvalidOutput,
		Agent:     agent,
		Message:   message,
		Retryable: true,
		RawOutput: raw,
	}
}

// NewProviderError wraps a provider failure.
func NewProviderError(agent string, cause error, retryable bool) *AgentError {
	msg := "provider error"
	if cause != nil {
		msg = cause.Error()
	}
	return &AgentError{
		Kind:      KindProviderError,
		Agent:     agent,
		Message:   msg,
		Retryable: retryable,
		Cause:     cause,
	}
}

// AsAgentError unwraps err into an AgentError.
func AsAgentError(err error) (*AgentError, bool) {
	var agentErr *AgentError
	if stderrors.As(err, &agentErr) {
		return agentErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AgentError of the given kind.
func IsKind(err error, kind AgentErrorKind) bool {
	agentErr, ok := AsAgentError(err)
	return ok && agentErr.Kind == kind
}

// ==========================
// 3. Error Constructors
// ==========================

// NewStructuralValidationError creates a retryable structural validation error.
func NewStructuralValidationError(failures []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStructuralValidation,
		Message:   "Content pack failed structural validation",
		Details:   strings.Join(failures, "; "),
		Retryable: true,
		Metadata:  map[string]interface{}{"failures": failures},
		Timestamp: time.Now().UTC(),
	}
}

// NewFatalError creates a non-retryable error that aborts a run.
func NewFatalError(phase string, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeFatal,
		Message:   fmt.Sprintf("Phase %s failed", phase),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"phase": phase},
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewQualityWarning records that the revision budget ran out.
func NewQualityWarning(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQualityWarning,
		Message:   "Revision budget exhausted, continuing with last generated content pack",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputValidationFailedError creates a non-retryable input error.
func NewInputValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Project intake validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheReadFailedError creates a retryable store read error.
func NewCacheReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheReadFailed,
		Message:   "Content pack store read failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewCacheWriteFailedError creates a retryable store write error.
func NewCacheWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheWriteFailed,
		Message:   "Content pack store write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewAuditWriteFailedError creates a retryable audit sink error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Audit record write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewArtifactWriteFailedError creates a retryable artifact write error.
func NewArtifactWriteFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactWriteFailed,
		Message:   "Writing generated files failed",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderError,
		ErrCodeCacheReadFailed,
		ErrCodeCacheWriteFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeArtifactWriteFailed:
		return 3

	case ErrCodeTimeout,
		ErrCodeInvalidOutput,
		ErrCodeStructuralValidation:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if phase, ok := stdErr.Metadata["phase"]; ok {
		vars["phase"] = phase
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTimeout, ErrCodeInvalidOutput, ErrCodeProviderError:
		return "AGENT"
	case ErrCodeStructuralValidation, ErrCodeInputValidationFailed:
		return "VALIDATION"
	case ErrCodeQualityWarning:
		return "QUALITY"
	case ErrCodeCacheReadFailed, ErrCodeCacheWriteFailed, ErrCodeAuditWriteFailed:
		return "STORAGE"
	case ErrCodeNotificationSendFailed:
		return "NOTIFICATION"
	case ErrCodeFatal:
		return "PIPELINE"
	default:
		return "OTHER"
	}
}

// Normalize turns any error into a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if agentErr, ok := AsAgentError(err); ok {
		return agentErr.ToStandardError()
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}
