// The report command runs the daily pipeline once: load the day of
// telemetry, compute the summary, narrate it, render the chart and post
// both to a Discord webhook. With -interactive it then answers follow-up
// questions on stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"battery-buddy/internal/chart"
	"battery-buddy/internal/delivery/discord"
	"battery-buddy/internal/interfaces"
	"battery-buddy/internal/logger"
	"battery-buddy/internal/narrator/claude"
	"battery-buddy/internal/narrator/narratorobs"
	"battery-buddy/internal/narrator/noop"
	"battery-buddy/internal/narrator/openai"
	"battery-buddy/internal/report"
	"battery-buddy/internal/reportlog"
	"battery-buddy/internal/store"
	"battery-buddy/internal/trace"
	"battery-buddy/internal/types"
	"battery-buddy/internal/weather"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	interactive := flag.Bool("interactive", false, "answer follow-up questions on stdin after delivery")
	noDeliver := flag.Bool("no-deliver", false, "print the report instead of posting it")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	ctx := context.Background()

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", *configPath)
		os.Exit(1)
	}

	var n interfaces.Narrator
	switch cfg.Narrator.Provider {
	case "CLAUDE":
		n = claude.New(cfg)
	case "OPENAI":
		n = openai.New(cfg)
	default:
		n = noop.New()
	}
	n = narratorobs.Wrap(n)

	var forecaster interfaces.Forecaster
	if cfg.Weather.Enabled {
		forecaster = weather.New(cfg)
	}

	svc := report.NewService(cfg, n, chart.New(), forecaster, reportlog.New(cfg.ReportLog.Dir))

	r, err := svc.Daily(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build daily report", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(r.Text)
	fmt.Println()

	if !*noDeliver {
		deliver(ctx, cfg, r.Text, r.ChartPNG)
	}

	if *interactive {
		runFollowUps(ctx, cfg, svc, n, r.Text)
	}
}

// deliver posts text then image. Each call is independent: a failed image
// upload is logged and does not undo the text that was already posted.
func deliver(ctx context.Context, cfg *store.Config, text string, png []byte) {
	webhookURL := os.Getenv(cfg.Delivery.DiscordWebhookEnv)
	if webhookURL == "" {
		logger.Warn(ctx, "Discord webhook not configured, skipping delivery", "env", cfg.Delivery.DiscordWebhookEnv)
		return
	}

	sink := discord.New(webhookURL, time.Duration(cfg.Delivery.TimeoutSeconds)*time.Second)

	err := sink.Send(ctx, text)
	logger.DeliveryResult(ctx, "discord", "text", err)

	if png != nil {
		err = sink.SendImage(ctx, "", png)
		logger.DeliveryResult(ctx, "discord", "image", err)
	}
}

// runFollowUps keeps a conversation going on stdin until exit/quit.
func runFollowUps(ctx context.Context, cfg *store.Config, svc *report.Service, n interfaces.Narrator, reportText string) {
	sum, err := svc.Summary()
	if err != nil {
		logger.ErrorWithErr(ctx, "Cannot seed follow-up conversation", err)
		return
	}
	data, err := json.Marshal(sum)
	if err != nil {
		logger.ErrorWithErr(ctx, "Cannot seed follow-up conversation", err)
		return
	}

	history := []types.Message{
		{Role: "user", Content: fmt.Sprintf("%s\n\nHere is the data:\n%s", cfg.Narrator.Style, string(data))},
		{Role: "assistant", Content: reportText},
	}

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if lower := strings.ToLower(line); lower == "exit" || lower == "quit" {
			return
		}

		history = append(history, types.Message{Role: "user", Content: line})
		answer, err := n.Reply(ctx, history)
		if err != nil {
			logger.ErrorWithErr(ctx, "Follow-up reply failed", err)
			fmt.Println("Bot: sorry, I could not answer that one. Try again.")
			history = history[:len(history)-1]
			continue
		}
		history = append(history, types.Message{Role: "assistant", Content: answer})
		fmt.Println("Bot:", answer)
	}
}
