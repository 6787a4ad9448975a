package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"signal-desk/internal/domain"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// ChatNotifier pushes each forwarded signal to one fixed chat.
type ChatNotifier struct {
	sender messageSender
	chat   *tele.Chat
	loc    *time.Location
}

func NewChatNotifier(sender messageSender, chatID int64, loc *time.Location) *ChatNotifier {
	if loc == nil {
		loc = time.UTC
	}
	return &ChatNotifier{sender: sender, chat: &tele.Chat{ID: chatID}, loc: loc}
}

func (n *ChatNotifier) Notify(ctx context.Context, sig domain.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.sender.Send(n.chat, formatSignal(sig, n.loc), tele.ModeHTML); err != nil {
		return fmt.Errorf("send to chat %d: %w", n.chat.ID, err)
	}
	return nil
}

// LogNotifier stands in for the chat when no bot token is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, sig domain.Signal) error {
	log.Info().
		Str("signal_id", sig.ID).
		Str("pair", sig.Pair).
		Str("direction", string(sig.Direction)).
		Int("quality", sig.QualityScore).
		Msg("signal forwarded")
	return nil
}

func formatSignal(s domain.Signal, loc *time.Location) string {
	return strings.Join([]string{
		fmt.Sprintf("⚡ <b>%s</b> <u>%s</u> (%s)",
			html.EscapeString(s.Pair), html.EscapeString(string(s.Direction)), html.EscapeString(s.Timeframe)),
		fmt.Sprintf("Price: <b>%s</b>", s.Price.StringFixed(5)),
		fmt.Sprintf("RSI: <b>%.2f</b> | MACD Hist: <b>%.4f</b>", s.RSI, s.MACDHistogram),
		fmt.Sprintf("Zone: <b>%s</b>", strings.ToUpper(string(s.Zone))),
		fmt.Sprintf("Quality: <b>%d%%</b>", s.QualityScore),
		fmt.Sprintf("Expires: %s", s.ExpiresAt.In(loc).Format("15:04:05 MST")),
	}, "\n")
}

func formatSignalList(signals []domain.Signal, loc *time.Location) string {
	blocks := make([]string, 0, len(signals))
	for _, s := range signals {
		blocks = append(blocks, formatSignal(s, loc))
	}
	return strings.Join(blocks, "\n\n")
}
