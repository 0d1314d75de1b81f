package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"battery-buddy/internal/narrator"
	"battery-buddy/internal/store"
	"battery-buddy/internal/summary"
	"battery-buddy/internal/trace"
	"battery-buddy/internal/types"
)

const endpoint = "https://api.openai.com/v1/chat/completions"

// Narrator implements interfaces.Narrator using the OpenAI chat API.
type Narrator struct {
	cfg        *store.Config
	httpClient *http.Client
}

func New(cfg *store.Config) *Narrator {
	return &Narrator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (n *Narrator) Generate(ctx context.Context, s summary.Summary, styleInstructions string) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	prompt := fmt.Sprintf(
		"%s\n\nHere is the data:\n%s\n\nNow write a natural-language summary and just return the summary text, without any extra commentary.",
		styleInstructions, string(data),
	)
	return n.complete(ctx, []types.Message{{Role: "user", Content: prompt}})
}

func (n *Narrator) Reply(ctx context.Context, history []types.Message) (string, error) {
	return n.complete(ctx, history)
}

func (n *Narrator) complete(ctx context.Context, messages []types.Message) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY not set", narrator.ErrAuth)
	}

	apiMessages := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		apiMessages = append(apiMessages, map[string]string{"role": m.Role, "content": m.Content})
	}

	body := map[string]any{
		"model":       n.cfg.Narrator.Model,
		"messages":    apiMessages,
		"temperature": n.cfg.Narrator.Temperature,
		"max_tokens":  n.cfg.Narrator.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bb))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", narrator.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: openai http %d", narrator.ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: openai http %d", narrator.ErrUnavailable, resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", narrator.ErrUnavailable, err)
	}
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", narrator.ErrUnavailable)
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("%w: empty completion", narrator.ErrUnavailable)
	}
	return out, nil
}
