package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Submission event types.
const (
	SubmissionEventGraded        = "submission.graded"
	SubmissionEventRetakeAllowed = "submission.retake_allowed"
	SubmissionEventSubmitted     = "submission.submitted"
)

// SubmissionEvent is broadcast after a submission changes state.
type SubmissionEvent struct {
	Type         string    `json:"type"`
	SubmissionID uint      `json:"submission_id"`
	StudentID    uint      `json:"student_id"`
	CourseID     uint      `json:"course_id"`
	Status       string    `json:"status"`
	Grade        *int      `json:"grade"`
	ActorID      uint      `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// SubmissionEventPublisher fans submission events out to other services.
type SubmissionEventPublisher interface {
	Publish(ctx context.Context, event SubmissionEvent) error
}

// subjectPublisher is the part of *nats.Conn the event publisher needs.
type subjectPublisher interface {
	Publish(subject string, data []byte) error
}

type natsSubmissionPublisher struct {
	conn   subjectPublisher
	prefix string
	logger zerolog.Logger
}

// NewNATSSubmissionPublisher publishes events on "<prefix>.submission.<kind>" subjects.
func NewNATSSubmissionPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) SubmissionEventPublisher {
	return newSubjectPublisher(conn, prefix, logger)
}

func newSubjectPublisher(conn subjectPublisher, prefix string, logger zerolog.Logger) *natsSubmissionPublisher {
	prefix = strings.Trim(strings.ReplaceAll(prefix, ":", "."), ".")
	if prefix == "" {
		prefix = "gema.learn"
	}
	return &natsSubmissionPublisher{
		conn:   conn,
		prefix: prefix,
		logger: logger.With().Str("component", "submission_events").Logger(),
	}
}

func (p *natsSubmissionPublisher) Publish(_ context.Context, event SubmissionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode submission event: %w", err)
	}

	subject := p.prefix + "." + event.Type
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug().Str("subject", subject).Uint("submission_id", event.SubmissionID).Msg("submission event published")
	return nil
}

// publishSubmissionEvent is best effort: a broker outage must not undo a committed grade.
func publishSubmissionEvent(ctx context.Context, publisher SubmissionEventPublisher, logger zerolog.Logger, event SubmissionEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Uint("submission_id", event.SubmissionID).Msg("failed to publish submission event")
	}
}
