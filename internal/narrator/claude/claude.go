package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
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

const anthropicVersion = "2023-06-01"

// Narrator implements interfaces.Narrator using the Anthropic messages API.
type Narrator struct {
	cfg        *store.Config
	endpoint   string
	httpClient *http.Client
}

// New creates a Claude-backed narrator. Set CLAUDE_API_ENDPOINT to route
// through a proxy; the key always comes from ANTHROPIC_API_KEY.
func New(cfg *store.Config) *Narrator {
	endpoint := "https://api.anthropic.com/v1/messages"
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Narrator{
		cfg:        cfg,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate writes the daily summary prose from the metric set.
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

// Reply continues a free-form conversation.
func (n *Narrator) Reply(ctx context.Context, history []types.Message) (string, error) {
	return n.complete(ctx, history)
}

func (n *Narrator) complete(ctx context.Context, messages []types.Message) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY not set", narrator.ErrAuth)
	}

	apiMessages := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		apiMessages = append(apiMessages, map[string]string{"role": m.Role, "content": m.Content})
	}

	reqBody := map[string]any{
		"model":      n.cfg.Narrator.Model,
		"max_tokens": n.cfg.Narrator.MaxTokens,
		"messages":   apiMessages,
	}
	bb, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(bb))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", narrator.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: claude http %d", narrator.ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: claude http %d: %s", narrator.ErrUnavailable, resp.StatusCode, string(body))
	}

	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", narrator.ErrUnavailable, err)
	}

	// Concatenate all returned text blocks.
	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("%w: empty completion", narrator.ErrUnavailable)
	}
	return out, nil
}
