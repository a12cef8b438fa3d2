package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gema-learn-api/internal/grading"
	"github.com/noah-isme/gema-learn-api/internal/models"
)

// ErrGradingSessionNotFound indicates the session never existed, was closed, or expired.
var ErrGradingSessionNotFound = errors.New("grading session not found")

// GradingSession is the edit snapshot of one submission while an instructor grades it.
// It is a copy: nothing in it is shared with the stored submission.
type GradingSession struct {
	ID           string              `json:"id"`
	SubmissionID uint                `json:"submission_id"`
	StudentID    uint                `json:"student_id"`
	Rubric       *models.Rubric      `json:"rubric,omitempty"`
	Grade        *int                `json:"grade"`
	Feedback     string              `json:"feedback"`
	RubricScores models.RubricScores `json:"rubric_scores"`
	OpenedBy     uint                `json:"opened_by"`
	OpenedAt     time.Time           `json:"opened_at"`
}

// Recompute refreshes the derived grade after a selection change. Without a rubric the grade is manual and untouched.
func (s *GradingSession) Recompute() grading.Result {
	if s.Rubric == nil {
		return grading.Result{}
	}
	result := grading.Evaluate(*s.Rubric, s.RubricScores)
	grade := result.Grade
	s.Grade = &grade
	return result
}

// CanSave reports whether a grade can be resolved for the session.
func (s GradingSession) CanSave() bool {
	return grading.Resolve(s.Rubric, s.RubricScores, s.Grade) != nil
}

// Clone returns a deep copy of the session.
func (s GradingSession) Clone() GradingSession {
	clone := s
	if s.Rubric != nil {
		rubric := s.Rubric.Clone()
		clone.Rubric = &rubric
	}
	if s.Grade != nil {
		grade := *s.Grade
		clone.Grade = &grade
	}
	clone.RubricScores = s.RubricScores.Clone()
	return clone
}

// GradingSessionStore keeps open grading sessions between requests.
type GradingSessionStore interface {
	Save(ctx context.Context, session GradingSession) error
	Get(ctx context.Context, id string) (GradingSession, error)
	Delete(ctx context.Context, id string) error
}

type memoryGradingSessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySessionEntry
}

type memorySessionEntry struct {
	session   GradingSession
	expiresAt time.Time
}

// NewMemoryGradingSessionStore keeps sessions in process memory. A non-positive ttl disables expiry.
func NewMemoryGradingSessionStore(ttl time.Duration) GradingSessionStore {
	return &memoryGradingSessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memorySessionEntry),
	}
}

func (s *memoryGradingSessionStore) Save(_ context.Context, session GradingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memorySessionEntry{session: session.Clone()}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.sessions[session.ID] = entry
	return nil
}

func (s *memoryGradingSessionStore) Get(_ context.Context, id string) (GradingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return GradingSession{}, ErrGradingSessionNotFound
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return GradingSession{}, ErrGradingSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (s *memoryGradingSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

type redisGradingSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisGradingSessionStore keeps sessions in Redis as JSON documents that expire after ttl.
func NewRedisGradingSessionStore(client *redis.Client, prefix string, ttl time.Duration) GradingSessionStore {
	if prefix == "" {
		prefix = "grading:session"
	}
	return &redisGradingSessionStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *redisGradingSessionStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

func (s *redisGradingSessionStore) Save(ctx context.Context, session GradingSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode grading session: %w", err)
	}
	return s.client.Set(ctx, s.key(session.ID), payload, s.ttl).Err()
}

func (s *redisGradingSessionStore) Get(ctx context.Context, id string) (GradingSession, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return GradingSession{}, ErrGradingSessionNotFound
		}
		return GradingSession{}, err
	}

	var session GradingSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return GradingSession{}, fmt.Errorf("decode grading session: %w", err)
	}
	if session.RubricScores == nil {
		session.RubricScores = models.RubricScores{}
	}
	return session, nil
}

func (s *redisGradingSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
