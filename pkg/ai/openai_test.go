package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestAssistant(t *testing.T, content string) *OpenAIAssistant {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]interface{}{"role": "assistant", "content": content},
				},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		})
	}))
	t.Cleanup(server.Close)

	assistant, err := NewOpenAIAssistant(OpenAIConfig{APIKey: "test", BaseURL: server.URL + "/v1", Logger: zerolog.Nop()})
	require.NoError(t, err)
	return assistant
}

func TestGenerateOutlineMapsModules(t *testing.T) {
	assistant := newTestAssistant(t, `{"modules":[{"module_title":" Basics ","lessons":[{"title":"Variables","summary":"Store values."}]}]}`)

	outline, err := assistant.GenerateOutline(context.Background(), "Intro to Go")
	require.NoError(t, err)
	require.Len(t, outline.Modules, 1)
	require.Equal(t, "Basics", outline.Modules[0].ModuleTitle)
	require.Equal(t, "Variables", outline.Modules[0].Lessons[0].Title)
}

func TestGenerateOutlineRejectsSchemaViolations(t *testing.T) {
	assistant := newTestAssistant(t, `{"modules":[{"module_title":"Empty","lessons":[]}]}`)

	_, err := assistant.GenerateOutline(context.Background(), "Intro to Go")
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestSearchHelpAcceptsFencedJSON(t *testing.T) {
	assistant := newTestAssistant(t, "```json\n{\"answer\":\"Open the course page.\"}\n```")

	answer, err := assistant.SearchHelp(context.Background(), "how do I enrol?")
	require.NoError(t, err)
	require.Equal(t, "Open the course page.", answer.Answer)
	require.Empty(t, answer.Sources)
	require.NotNil(t, answer.Sources)
}

func TestNewOpenAIAssistantRequiresKey(t *testing.T) {
	_, err := NewOpenAIAssistant(OpenAIConfig{})
	require.Error(t, err)
}

func TestUnavailableAssistant(t *testing.T) {
	_, err := Unavailable{}.GenerateOutline(context.Background(), "x")
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = Unavailable{}.SearchHelp(context.Background(), "x")
	require.ErrorIs(t, err, ErrUnavailable)
}
