package semantic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sql-trainer/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) config.JudgeConfig {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return config.JudgeConfig{
		URL:     server.URL,
		APIKey:  "sk-test",
		Model:   "llama-3.3-70b-versatile",
		Timeout: 5 * time.Second,
	}
}

func answerWith(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}
}

func TestJudge_Equivalent(t *testing.T) {
	var captured chatRequest
	cfg := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		answerWith("True")(w, r)
	})

	judge := NewJudge(cfg)
	ok := judge.Judge(t.Context(), "List every employee.", "SELECT name FROM employees", "select name from employees")

	assert.True(t, ok)
	assert.Equal(t, "llama-3.3-70b-versatile", captured.Model)
	assert.Zero(t, captured.Temperature, "grading must be deterministic")
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[1].Content, "List every employee.")
	assert.Contains(t, captured.Messages[1].Content, "select name from employees")
}

func TestJudge_AnswerParsing(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"True", true},
		{"true.", true},
		{"  TRUE\n", true},
		{"False", false},
		{"The queries are equivalent: True", false},
		{"maybe", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.answer, func(t *testing.T) {
			judge := NewJudge(chatServer(t, answerWith(tc.answer)))
			assert.Equal(t, tc.want, judge.Judge(t.Context(), "p", "base", "student"))
		})
	}
}

func TestJudge_FailsClosedOnServerError(t *testing.T) {
	cfg := chatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limit", http.StatusTooManyRequests)
	})

	judge := NewJudge(cfg)
	assert.False(t, judge.Judge(t.Context(), "p", "base", "student"))
}

func TestJudge_FailsClosedOnBadPayload(t *testing.T) {
	cfg := chatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	judge := NewJudge(cfg)
	assert.False(t, judge.Judge(t.Context(), "p", "base", "student"))
}

func TestJudge_FailsClosedOnEmptyChoices(t *testing.T) {
	cfg := chatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	judge := NewJudge(cfg)
	assert.False(t, judge.Judge(t.Context(), "p", "base", "student"))
}

func TestJudge_FailsClosedOnUnreachableEndpoint(t *testing.T) {
	judge := NewJudge(config.JudgeConfig{
		URL:     "http://127.0.0.1:1/v1/chat/completions",
		APIKey:  "sk-test",
		Model:   "m",
		Timeout: time.Second,
	})

	assert.False(t, judge.Judge(t.Context(), "p", "base", "student"))
}
