package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"battery-buddy/internal/trace"
)

// Sink posts messages to a Discord webhook. The webhook URL is a secret
// and must come from the environment, never from a config file.
type Sink struct {
	webhookURL string
	httpClient *http.Client
}

func New(webhookURL string, timeout time.Duration) *Sink {
	return &Sink{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts a plain text message.
func (s *Sink) Send(ctx context.Context, text string) error {
	ctx, span := trace.StartSpan(ctx, "discord.Send")
	defer span.End()

	payload, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	defer resp.Body.Close()

	// Webhooks answer 204 for plain posts.
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord send: http %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// SendImage uploads a PNG attachment via multipart form data.
func (s *Sink) SendImage(ctx context.Context, caption string, png []byte) error {
	ctx, span := trace.StartSpan(ctx, "discord.SendImage")
	defer span.End()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if caption != "" {
		meta, err := json.Marshal(map[string]string{"content": caption})
		if err != nil {
			return err
		}
		if err := w.WriteField("payload_json", string(meta)); err != nil {
			return err
		}
	}

	part, err := w.CreateFormFile("file", "chart.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(png); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord send image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord send image: http %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
