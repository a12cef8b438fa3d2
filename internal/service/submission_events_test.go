package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []capturedMessage
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, capturedMessage{subject: subject, data: data})
	return nil
}

func TestSubmissionPublisherWritesSubjectAndPayload(t *testing.T) {
	conn := &fakeConn{}
	publisher := newSubjectPublisher(conn, ":gema:learn:", testLogger())

	grade := 88
	occurred := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	err := publisher.Publish(context.Background(), SubmissionEvent{
		Type:         SubmissionEventGraded,
		SubmissionID: 12,
		StudentID:    4,
		CourseID:     1,
		Status:       "graded",
		Grade:        &grade,
		ActorID:      2,
		OccurredAt:   occurred,
	})
	require.NoError(t, err)

	require.Len(t, conn.messages, 1)
	require.Equal(t, "gema.learn.submission.graded", conn.messages[0].subject)

	var decoded SubmissionEvent
	require.NoError(t, json.Unmarshal(conn.messages[0].data, &decoded))
	require.Equal(t, uint(12), decoded.SubmissionID)
	require.Equal(t, uint(4), decoded.StudentID)
	require.Equal(t, 88, *decoded.Grade)
	require.True(t, occurred.Equal(decoded.OccurredAt))
	require.JSONEq(t, `{
		"type": "submission.graded",
		"submission_id": 12,
		"student_id": 4,
		"course_id": 1,
		"status": "graded",
		"grade": 88,
		"actor_id": 2,
		"occurred_at": "2024-06-01T10:00:00Z"
	}`, string(conn.messages[0].data))
}

func TestSubmissionPublisherDefaultsPrefix(t *testing.T) {
	conn := &fakeConn{}
	publisher := newSubjectPublisher(conn, "", testLogger())

	require.NoError(t, publisher.Publish(context.Background(), SubmissionEvent{Type: SubmissionEventRetakeAllowed}))
	require.Equal(t, "gema.learn.submission.retake_allowed", conn.messages[0].subject)
}

func TestSubmissionPublisherWrapsBrokerErrors(t *testing.T) {
	broker := errors.New("nats: connection closed")
	publisher := newSubjectPublisher(&fakeConn{err: broker}, "gema.learn", testLogger())

	err := publisher.Publish(context.Background(), SubmissionEvent{Type: SubmissionEventSubmitted})
	require.ErrorIs(t, err, broker)
	require.Contains(t, err.Error(), "gema.learn.submission.submitted")
}
