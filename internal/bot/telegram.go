package bot

import (
	"context"
	"fmt"
	"time"

	"signal-desk/internal/domain"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

const latestSignalsShown = 5

// SignalFeed is the forwarder view the bot commands need.
type SignalFeed interface {
	Latest(ctx context.Context, n int) ([]domain.Signal, error)
	HasCredential() bool
	PollInterval() time.Duration
}

// NewBot creates a long-polling bot. It does not start polling.
func NewBot(token string) (*tele.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

type Commands struct {
	feed    SignalFeed
	apiBase string
	loc     *time.Location
}

func NewCommands(feed SignalFeed, apiBase string, loc *time.Location) *Commands {
	if loc == nil {
		loc = time.UTC
	}
	return &Commands{feed: feed, apiBase: apiBase, loc: loc}
}

// Register wires /start, /signals and /status onto b.
func (c *Commands) Register(b *tele.Bot) {
	b.Handle("/start", func(ctx tele.Context) error {
		return ctx.Send(c.startReply())
	})
	b.Handle("/signals", func(ctx tele.Context) error {
		reply, isHTML := c.signalsReply(context.Background())
		if isHTML {
			return ctx.Send(reply, tele.ModeHTML)
		}
		return ctx.Send(reply)
	})
	b.Handle("/status", func(ctx tele.Context) error {
		return ctx.Send(c.statusReply())
	})
	log.Info().Msg("telegram commands registered")
}

func (c *Commands) startReply() string {
	return "Welcome to the Binary Options Signal bot. Use /signals to get the latest high-confidence entries."
}

// signalsReply reports whether the reply is HTML formatted.
func (c *Commands) signalsReply(ctx context.Context) (string, bool) {
	if c.feed == nil {
		return "Signal feed unavailable", false
	}
	signals, err := c.feed.Latest(ctx, latestSignalsShown)
	if err != nil {
		log.Error().Err(err).Msg("/signals lookup failed")
		return fmt.Sprintf("Unable to load signals: %v", err), false
	}
	if len(signals) == 0 {
		return "No signals available right now.", false
	}
	return formatSignalList(signals, c.loc), true
}

func (c *Commands) statusReply() string {
	if c.feed == nil {
		return "Bot online. Signal feed unavailable."
	}
	session := "not authenticated"
	if c.feed.HasCredential() {
		session = "authenticated"
	}
	return fmt.Sprintf("Bot online. Polling %s every %d seconds (session %s).",
		c.apiBase, int(c.feed.PollInterval().Round(time.Second)/time.Second), session)
}
