package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"battery-buddy/internal/trace"
)

// Sink delivers messages to one Telegram chat through an existing bot
// connection. Used for the scheduled daily push; interactive replies go
// through the bot handlers directly.
type Sink struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func New(bot *tgbotapi.BotAPI, chatID int64) *Sink {
	return &Sink{bot: bot, chatID: chatID}
}

func (s *Sink) Send(ctx context.Context, text string) error {
	_, span := trace.StartSpan(ctx, "telegram.Send")
	defer span.End()

	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (s *Sink) SendImage(ctx context.Context, caption string, png []byte) error {
	_, span := trace.StartSpan(ctx, "telegram.SendImage")
	defer span.End()

	photo := tgbotapi.NewPhoto(s.chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: png})
	photo.Caption = caption
	if _, err := s.bot.Send(photo); err != nil {
		return fmt.Errorf("telegram send image: %w", err)
	}
	return nil
}
