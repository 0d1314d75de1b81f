// Package bot is the Telegram front end: command routing, free-text chat
// via the narrator, and the optional scheduled daily push.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"battery-buddy/internal/delivery/telegram"
	"battery-buddy/internal/interfaces"
	"battery-buddy/internal/logger"
	"battery-buddy/internal/report"
	"battery-buddy/internal/store"
	"battery-buddy/internal/trace"
)

// handlerTimeout bounds one command handling including all outbound calls.
const handlerTimeout = 90 * time.Second

type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *store.Config
	reports  *report.Service
	narrator interfaces.Narrator
	renderer interfaces.ChartRenderer

	pushMu     sync.Mutex
	pushedDate string
}

func New(token string, cfg *store.Config, reports *report.Service, narrator interfaces.Narrator, renderer interfaces.ChartRenderer) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{
		api:      api,
		cfg:      cfg,
		reports:  reports,
		narrator: narrator,
		renderer: renderer,
	}, nil
}

// Run long-polls for updates until the context is cancelled. Every update
// is handled in its own goroutine so a slow narrator call cannot block
// unrelated commands.
func (b *Bot) Run(ctx context.Context) error {
	logger.Info(ctx, "Bot started", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	pushTick := time.NewTicker(60 * time.Second)
	defer pushTick.Stop()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go func(update tgbotapi.Update) {
				hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
				defer cancel()
				b.handleUpdate(hctx, update)
			}(update)
		case <-pushTick.C:
			if b.shouldPushNow(time.Now()) {
				go func() {
					hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
					defer cancel()
					b.pushDaily(hctx)
				}()
			}
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

// shouldPushNow reports whether the scheduled daily push is due: push
// enabled, local time past the configured threshold, not yet pushed today.
func (b *Bot) shouldPushNow(now time.Time) bool {
	if !b.cfg.Telegram.Push.Enabled {
		return false
	}
	after, err := time.Parse("15:04", b.cfg.Telegram.Push.After)
	if err != nil {
		return false
	}
	threshold := time.Date(now.Year(), now.Month(), now.Day(), after.Hour(), after.Minute(), 0, 0, now.Location())
	if now.Before(threshold) {
		return false
	}

	today := now.Format("2006-01-02")
	b.pushMu.Lock()
	defer b.pushMu.Unlock()
	if b.pushedDate == today {
		return false
	}
	b.pushedDate = today
	return true
}

func (b *Bot) pushDaily(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "bot.pushDaily")
	defer span.End()

	r, err := b.reports.Daily(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Scheduled push failed to build report", err)
		return
	}

	sink := telegram.New(b.api, b.cfg.Telegram.Push.ChatID)
	err = sink.Send(ctx, r.Text)
	logger.DeliveryResult(ctx, "telegram", "text", err, "scheduled", true)
	if r.ChartPNG != nil {
		err = sink.SendImage(ctx, chartCaption, r.ChartPNG)
		logger.DeliveryResult(ctx, "telegram", "image", err, "scheduled", true)
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message

	ctx, span := trace.StartSpan(ctx, "bot.handleUpdate")
	defer span.End()

	if msg.IsCommand() {
		logger.Info(ctx, "Command received", "command", msg.Command(), "chat_id", msg.Chat.ID)
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
		case "help":
			b.handleHelp(ctx, msg)
		case "daily":
			b.handleDaily(ctx, msg)
		case "status":
			b.handleStatus(ctx, msg)
		case "chart":
			b.handleChart(ctx, msg)
		default:
			b.reply(ctx, msg.Chat.ID, "Unknown command. Type /help for the list of commands.")
		}
		return
	}

	b.handleFreeText(ctx, msg)
}

// reply sends a markdown text message; failures are logged, not retried.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(m)
	logger.DeliveryResult(ctx, "telegram", "text", err, "chat_id", chatID)
}

func (b *Bot) replyPhoto(ctx context.Context, chatID int64, caption string, png []byte) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: png})
	photo.Caption = caption
	_, err := b.api.Send(photo)
	logger.DeliveryResult(ctx, "telegram", "image", err, "chat_id", chatID)
}

func (b *Bot) chatAction(chatID int64, action string) {
	_, _ = b.api.Request(tgbotapi.NewChatAction(chatID, action))
}
