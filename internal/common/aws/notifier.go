package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"site-pipeline/internal/common/config"
	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/models"
)

// Event types published to the topic.
const (
	EventRunSucceeded = "site.generation.succeeded"
	EventRunFailed    = "site.generation.failed"
)

// RunNotification is built by the caller from a finished run.
type RunNotification struct {
	RunID         string              `json:"runId"`
	ProjectID     string              `json:"projectId"`
	ProjectName   string              `json:"projectName"`
	Success       bool                `json:"success"`
	CacheHit      bool                `json:"cacheHit"`
	Files         int                 `json:"files"`
	ContentHash   string              `json:"contentHash,omitempty"`
	OutputDir     string              `json:"outputDir,omitempty"`
	RequiredTodos []models.TodoMarker `json:"requiredTodos,omitempty"`
	Errors        []string            `json:"errors,omitempty"`
	ContactEmail  string              `json:"-"`
}

// NewRunNotification summarises a pipeline result.
func NewRunNotification(intake models.ProjectIntake, res *models.PipelineResult, outputDir string) RunNotification {
	n := RunNotification{
		RunID:         res.RunID,
		ProjectID:     res.ProjectID,
		ProjectName:   intake.Name,
		Success:       res.Success,
		CacheHit:      res.Metrics.CacheHit,
		Files:         len(res.GeneratedFiles),
		OutputDir:     outputDir,
		RequiredTodos: res.RequiredTodos(),
		ContactEmail:  intake.ContactEmail,
	}
	if res.ContentPack != nil {
		n.ContentHash = res.ContentPack.Hash
	}
	for _, e := range res.Errors {
		n.Errors = append(n.Errors, fmt.Sprintf("[%s] %s: %s", e.Phase, e.Code, e.Message))
	}
	return n
}

// Notifier publishes completion events and mails the customer the facts the
// site still needs. A nil *Notifier is valid and sends nothing.
type Notifier struct {
	email    SESAPI
	events   SNSAPI
	topicARN string
	from     string
	logger   logger.Logger
}

func NewNotifier(email SESAPI, events SNSAPI, topicARN, from string, log logger.Logger) *Notifier {
	return &Notifier{email: email, events: events, topicARN: topicARN, from: from, logger: log}
}

// NewNotifierFromConfig loads the default AWS credential chain. It returns nil
// when notifications are disabled.
func NewNotifierFromConfig(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewNotifier(newSESClient(awsCfg), newSNSClient(awsCfg), cfg.SNS.TopicARN, cfg.SES.FromEmail, log), nil
}

// NotifyRunCompleted publishes the run event and, for successful runs with
// required TODOs, emails the customer. Both sends are attempted; the first
// failure is returned.
func (n *Notifier) NotifyRunCompleted(ctx context.Context, note RunNotification) error {
	if n == nil {
		return nil
	}

	var firstErr error
	if n.events != nil && n.topicARN != "" {
		if err := n.publish(ctx, note); err != nil {
			firstErr = err
		}
	}

	if note.Success && len(note.RequiredTodos) > 0 && note.ContactEmail != "" && n.email != nil && n.from != "" {
		if err := n.sendTodoReminder(ctx, note); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *Notifier) publish(ctx context.Context, note RunNotification) error {
	body, err := json.Marshal(note)
	if err != nil {
		return apperrors.NewNotificationSendFailedError("sns", err)
	}

	eventType := EventRunSucceeded
	if !note.Success {
		eventType = EventRunFailed
	}

	out, err := n.events.Publish(ctx, eventMessage(n.topicARN, eventType, string(body)))
	if err != nil {
		n.logger.Error("Failed to publish run event", map[string]interface{}{
			"runId": note.RunID,
			"error": err.Error(),
		})
		return apperrors.NewNotificationSendFailedError("sns", err)
	}

	fields := map[string]interface{}{"runId": note.RunID, "eventType": eventType}
	if out != nil && out.MessageId != nil {
		fields["messageId"] = *out.MessageId
	}
	n.logger.Info("Run event published", fields)
	return nil
}

func (n *Notifier) sendTodoReminder(ctx context.Context, note RunNotification) error {
	subject := fmt.Sprintf("%s: a few details are still missing", note.ProjectName)

	var b strings.Builder
	fmt.Fprintf(&b, "Your website draft for %s is ready.\n\n", note.ProjectName)
	b.WriteString("Before it can go live we need the following information:\n\n")
	for _, todo := range note.RequiredTodos {
		fmt.Fprintf(&b, "- %s (%s)\n", todo.Description, todo.Path)
	}

	if _, err := n.email.SendEmail(ctx, textEmail(n.from, note.ContactEmail, subject, b.String())); err != nil {
		n.logger.Error("Failed to send TODO reminder", map[string]interface{}{
			"runId": note.RunID,
			"error": err.Error(),
		})
		return apperrors.NewNotificationSendFailedError("ses", err)
	}

	n.logger.Info("TODO reminder sent", map[string]interface{}{
		"runId": note.RunID,
		"todos": len(note.RequiredTodos),
	})
	return nil
}
