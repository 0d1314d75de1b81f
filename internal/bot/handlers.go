package bot

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"battery-buddy/internal/logger"
	"battery-buddy/internal/telemetry"
	"battery-buddy/internal/types"
)

const chartCaption = "📊 Your battery charts for today!"

const startMessage = `🔋 *Battery Buddy Bot* is here! ⚡

I am your battery assistant and send you daily updates about your battery performance!

*Available commands:*
/daily - Request the daily report
/status - Show the current status
/chart - Generate the battery chart
/help - Show help

Let's optimize your battery! 💚`

const helpMessage = `🔋 *Battery Buddy Bot - Help*

*Commands:*
/daily - Generate a daily battery report
/status - Show the current battery status
/chart - Create the battery chart
/help - Show this help

*Features:*
⚡ Daily savings updates
☀️ Sunny day celebrations
💰 Economics reports
📊 Automatic charts
🌤️ Weather forecasts

*Just type /daily for your first report!*`

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	b.reply(ctx, msg.Chat.ID, startMessage)
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	b.reply(ctx, msg.Chat.ID, helpMessage)
}

func (b *Bot) handleDaily(ctx context.Context, msg *tgbotapi.Message) {
	b.chatAction(msg.Chat.ID, tgbotapi.ChatTyping)

	r, err := b.reports.Daily(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Daily report failed", err, "chat_id", msg.Chat.ID)
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("❌ Failed to generate the report: %v", err))
		return
	}

	// Text first, chart second; a failed photo upload must not undo the
	// text that was already delivered.
	b.reply(ctx, msg.Chat.ID, r.Text)
	if r.ChartPNG != nil {
		b.replyPhoto(ctx, msg.Chat.ID, chartCaption, r.ChartPNG)
	}
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	rows, err := b.reports.Rows()
	if err != nil {
		logger.ErrorWithErr(ctx, "Status failed to load telemetry", err, "chat_id", msg.Chat.ID)
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("❌ Failed to load the status: %v", err))
		return
	}

	b.reply(ctx, msg.Chat.ID, statusText(rows))
}

// statusText renders the /status message from the raw rows: last-row SOC
// and price, summed savings, peak price with its time of day.
func statusText(rows []telemetry.Row) string {
	last := rows[len(rows)-1]

	var totalSavings float64
	peak := rows[0]
	for _, r := range rows {
		totalSavings += r.ElectricitySavingsStep
		if r.ForeignPowerCosts > peak.ForeignPowerCosts {
			peak = r
		}
	}

	var batteryState string
	switch {
	case last.SOC > 0.8:
		batteryState = "🔋 Fully charged"
	case last.SOC > 0.5:
		batteryState = "⚡ Well charged"
	case last.SOC > 0.2:
		batteryState = "🔋 Partially charged"
	default:
		batteryState = "⚡ Almost empty"
	}

	charged := "⚡ discharged"
	if last.SOC > 0.5 {
		charged = "🔋 charged"
	}

	return fmt.Sprintf(`🔋 *Current battery status*

*Charge level:* %.1f%% %s
*Savings today:* %.2f€
*Current electricity price:* %.3f€/kWh
*Peak price today:* %.3f€/kWh at %s

*The battery is %s*`,
		last.SOC*100, batteryState,
		totalSavings,
		last.ForeignPowerCosts,
		peak.ForeignPowerCosts, peak.Clock(),
		charged,
	)
}

func (b *Bot) handleChart(ctx context.Context, msg *tgbotapi.Message) {
	b.chatAction(msg.Chat.ID, tgbotapi.ChatUploadPhoto)

	rows, err := b.reports.Rows()
	if err != nil {
		logger.ErrorWithErr(ctx, "Chart failed to load telemetry", err, "chat_id", msg.Chat.ID)
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("❌ Failed to create the chart: %v", err))
		return
	}

	png, err := b.renderer.RenderWithSOC(rows)
	if err != nil {
		logger.ErrorWithErr(ctx, "Chart rendering failed", err, "chat_id", msg.Chat.ID)
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("❌ Failed to create the chart: %v", err))
		return
	}

	b.replyPhoto(ctx, msg.Chat.ID, chartCaption, png)
}

// chatContext is the battery snapshot handed to the narrator so free-text
// answers are grounded in today's data.
type chatContext struct {
	CurrentSOC        float64 `json:"current_soc"`
	TotalSavings      float64 `json:"total_savings"`
	SolarProduction   float64 `json:"solar_production"`
	BatteryCharged    float64 `json:"battery_charged"`
	BatteryDischarged float64 `json:"battery_discharged"`
	PeakPrice         float64 `json:"peak_price"`
	PeakTime          string  `json:"peak_time"`
	GridDependencePct float64 `json:"grid_dependence_pct"`
}

func buildChatContext(rows []telemetry.Row) chatContext {
	var cc chatContext
	var grossLoad, gridImport float64
	peak := rows[0]
	for _, r := range rows {
		cc.TotalSavings += r.ElectricitySavingsStep
		cc.SolarProduction += r.PVProfile
		cc.BatteryCharged += r.PVToBattery + r.GridToBattery
		cc.BatteryDischarged += r.BatteryToLoad + r.BatteryToGrid
		grossLoad += r.GrossLoad
		gridImport += r.GridImport
		if r.ForeignPowerCosts > peak.ForeignPowerCosts {
			peak = r
		}
	}
	cc.CurrentSOC = rows[len(rows)-1].SOC
	cc.PeakPrice = peak.ForeignPowerCosts
	cc.PeakTime = peak.Clock()
	if grossLoad > 0 {
		cc.GridDependencePct = gridImport / grossLoad * 100
	}
	return cc
}

func (b *Bot) handleFreeText(ctx context.Context, msg *tgbotapi.Message) {
	b.chatAction(msg.Chat.ID, tgbotapi.ChatTyping)

	rows, err := b.reports.Rows()
	if err != nil {
		logger.ErrorWithErr(ctx, "Free-text handler failed to load telemetry", err, "chat_id", msg.Chat.ID)
		b.reply(ctx, msg.Chat.ID, "🔋 Sorry, I had a problem processing your question. Try again or type /help!")
		return
	}

	data, err := json.Marshal(buildChatContext(rows))
	if err != nil {
		logger.ErrorWithErr(ctx, "Free-text handler failed to marshal context", err)
		b.reply(ctx, msg.Chat.ID, "🔋 Sorry, I had a problem processing your question. Try again or type /help!")
		return
	}

	prompt := fmt.Sprintf("%s\n\nCURRENT BATTERY DATA:\n%s\n\nUSER QUESTION: %s",
		b.cfg.Narrator.ChatStyle, string(data), msg.Text)

	answer, err := b.narrator.Reply(ctx, []types.Message{{Role: "user", Content: prompt}})
	if err != nil {
		logger.ErrorWithErr(ctx, "Narrator reply failed", err, "chat_id", msg.Chat.ID)
		b.reply(ctx, msg.Chat.ID, "🔋 Sorry, I had a problem processing your question. Try again or type /help!")
		return
	}

	b.reply(ctx, msg.Chat.ID, answer)
}
