package ai

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates no assistant provider is configured.
	ErrUnavailable = errors.New("assistant is not configured")
	// ErrInvalidResponse indicates the provider answered with content that does not match the expected shape.
	ErrInvalidResponse = errors.New("assistant returned an invalid response")
)

// OutlineLesson is a proposed lesson with a one sentence summary.
type OutlineLesson struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// OutlineModule groups proposed lessons.
type OutlineModule struct {
	ModuleTitle string          `json:"module_title"`
	Lessons     []OutlineLesson `json:"lessons"`
}

// Outline is a generated course structure for a topic.
type Outline struct {
	Modules []OutlineModule `json:"modules"`
}

// HelpAnswer is a generated answer to a help-center question.
type HelpAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Assistant generates course outlines and help answers. Each call is a single request without retries.
type Assistant interface {
	GenerateOutline(ctx context.Context, topic string) (Outline, error)
	SearchHelp(ctx context.Context, query string) (HelpAnswer, error)
}

// Unavailable is used when no provider credentials are configured.
type Unavailable struct{}

// GenerateOutline always fails with ErrUnavailable.
func (Unavailable) GenerateOutline(context.Context, string) (Outline, error) {
	return Outline{}, ErrUnavailable
}

// SearchHelp always fails with ErrUnavailable.
func (Unavailable) SearchHelp(context.Context, string) (HelpAnswer, error) {
	return HelpAnswer{}, ErrUnavailable
}
