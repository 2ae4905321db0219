// Package semantic escalates gradings the result comparator cannot decide
// to an LLM judge speaking the OpenAI chat-completions dialect. The judge
// is advisory for passes only: any failure to get a clean answer resolves
// to "not equivalent".
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sql-trainer/backend/internal/config"
	"github.com/sql-trainer/backend/internal/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const systemPrompt = `You are an expert-level SQL evaluator with a deep understanding of semantics and business requirements.
Your task is to check whether the student's query satisfies the requirements of the exercise statement, that is, whether the returned data allows the requested information to be correctly deduced, even when:
- columns are named, ordered or formatted differently;
- extra columns are present, as long as the required ones are there;
- the rows are ordered differently, unless the statement demands a specific order.
Answer only True or False.`

const userPromptTemplate = `Exercise statement: %s
Reference query: %s
Student query: %s
Do both queries above return results that correctly satisfy the statement?
Answer only True or False.`

// Judge asks a chat-completions endpoint whether two queries satisfy the
// same exercise statement.
type Judge struct {
	client *http.Client
	cfg    config.JudgeConfig
}

func NewJudge(cfg config.JudgeConfig) *Judge {
	return &Judge{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Judge reports whether the model considers the student query equivalent
// to the reference query for the given statement. Transport errors, bad
// payloads and ambiguous answers all report false.
func (j *Judge) Judge(ctx context.Context, prompt, baseSQL, studentSQL string) bool {
	answer, err := j.ask(ctx, prompt, baseSQL, studentSQL)
	if err != nil {
		slog.Warn("semantic judge unavailable, failing closed", "error", err)
		metrics.RecordSemanticEscalation("failed")
		return false
	}

	// only an explicit affirmative counts
	equivalent := strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "true")
	if equivalent {
		metrics.RecordSemanticEscalation("equivalent")
	} else {
		metrics.RecordSemanticEscalation("rejected")
	}

	return equivalent
}

func (j *Judge) ask(ctx context.Context, prompt, baseSQL, studentSQL string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: j.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, prompt, baseSQL, studentSQL)},
		},
		Temperature: 0,
		MaxTokens:   10,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.cfg.APIKey)

	resp, err := j.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "error", err)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response carries no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
