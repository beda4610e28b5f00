package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
)

const (
	writerName = "telegram"
	places     = 4
)

// Sender is the part of *tgbot.BotAPI the writer needs.
type Sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

var _ ports.SignalWriter = (*Writer)(nil)

// Writer delivers each signal row as a Markdown chat message.
type Writer struct {
	bot    Sender
	chatID int64
	logger ports.Logger
}

// Config holds configuration for the Telegram writer.
type Config struct {
	Token  string
	ChatID int64
	Logger ports.Logger
}

// New connects to the Bot API with the token and returns a writer for ChatID.
func New(cfg Config) (*Writer, error) {
	if cfg.Token == "" || cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram token and chat ID are required: %w", ports.ErrConfigurationError)
	}
	b, err := tgbot.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w: %w", ports.ErrAuthenticationFailed, err)
	}
	return NewWithSender(b, cfg.ChatID, cfg.Logger)
}

// NewWithSender builds a writer around an existing sender.
func NewWithSender(bot Sender, chatID int64, logger ports.Logger) (*Writer, error) {
	if bot == nil {
		return nil, fmt.Errorf("telegram sender is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram writer")
	}
	return &Writer{bot: bot, chatID: chatID, logger: logger}, nil
}

// Name implements ports.SignalWriter.
func (w *Writer) Name() string { return writerName }

// WriteSignal sends the formatted row to the configured chat.
func (w *Writer) WriteSignal(ctx context.Context, row domain.SignalRow) error {
	msg := tgbot.NewMessage(w.chatID, FormatMessage(row))
	msg.ParseMode = tgbot.ModeMarkdown

	sent, err := w.bot.Send(msg)
	if err != nil {
		w.logger.Error(ctx, err, "Telegram send failed", ports.Fields{"chatID": w.chatID})
		return fmt.Errorf("telegram send: %w: %w", ports.ErrWriteFailed, err)
	}
	w.logger.Debug(ctx, "Signal sent to Telegram", ports.Fields{"chatID": w.chatID, "messageID": sent.MessageID})
	return nil
}

// FormatMessage renders the row as Markdown text.
func FormatMessage(row domain.SignalRow) string {
	p := row.Payload
	esc := func(s string) string { return tgbot.EscapeText(tgbot.ModeMarkdown, s) }

	reasons := "none"
	if len(p.Reasons) > 0 {
		reasons = esc(p.JoinedReasons())
	}
	macdSignal := "n/a"
	if p.MACDSignalReady {
		macdSignal = num(p.MACDSignal)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Asset:* %s (%s)\n", esc(p.Asset), esc(p.Interval))
	fmt.Fprintf(&b, "📌 *Decision:* %s\n", p.Signal)
	fmt.Fprintf(&b, "💵 *Close:* %s\n", num(p.ClosePrice))
	fmt.Fprintf(&b, "📝 *Reasons:* %s\n", reasons)
	fmt.Fprintf(&b, "RSI %s | MACD %s / %s | EMA %s / %s\n",
		num(p.RSI), num(p.MACD), macdSignal, num(p.EMAFast), num(p.EMASlow))
	fmt.Fprintf(&b, "🕒 %s UTC", row.FormattedTimestamp())
	return b.String()
}

func num(v float64) string {
	return decimal.NewFromFloat(v).Round(places).String()
}
