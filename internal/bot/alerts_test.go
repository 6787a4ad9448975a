package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"signal-desk/internal/domain"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"
)

func sampleSignal() domain.Signal {
	return domain.Signal{
		ID:            "sig-1",
		Pair:          "EUR/USD",
		Direction:     domain.DirectionCall,
		Timeframe:     "5m",
		GeneratedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		ExpiresAt:     time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC),
		Price:         decimal.RequireFromString("1.0851"),
		RSI:           28.456,
		MACDHistogram: -0.000123,
		Zone:          domain.ZoneSupport,
		QualityScore:  84,
	}
}

func TestFormatSignal(t *testing.T) {
	got := formatSignal(sampleSignal(), time.UTC)
	want := strings.Join([]string{
		"⚡ <b>EUR/USD</b> <u>CALL</u> (5m)",
		"Price: <b>1.08510</b>",
		"RSI: <b>28.46</b> | MACD Hist: <b>-0.0001</b>",
		"Zone: <b>SUPPORT</b>",
		"Quality: <b>84%</b>",
		"Expires: 12:05:00 UTC",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected message:\n%s\nwant:\n%s", got, want)
	}
}

func TestChatNotifierSendsHTMLToFixedChat(t *testing.T) {
	sender := &fakeSender{}
	n := NewChatNotifier(sender, 42, nil)

	if err := n.Notify(context.Background(), sampleSignal()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.messages[42]) != 1 {
		t.Fatalf("expected one message to chat 42, got %+v", sender.messages)
	}
	if !strings.Contains(sender.messages[42][0], "<b>EUR/USD</b>") {
		t.Fatalf("unexpected body: %s", sender.messages[42][0])
	}
	if sender.lastMode != tele.ModeHTML {
		t.Fatalf("expected HTML parse mode, got %q", sender.lastMode)
	}
}

func TestChatNotifierPropagatesSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("chat not found")}
	n := NewChatNotifier(sender, 42, nil)

	if err := n.Notify(context.Background(), sampleSignal()); err == nil {
		t.Fatal("expected send failure to be returned")
	}
}

func TestChatNotifierHonoursCancelledContext(t *testing.T) {
	sender := &fakeSender{}
	n := NewChatNotifier(sender, 42, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.Notify(ctx, sampleSignal()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if len(sender.messages) != 0 {
		t.Fatal("expected nothing sent")
	}
}

func TestLogNotifierNeverFails(t *testing.T) {
	if err := (LogNotifier{}).Notify(context.Background(), sampleSignal()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type fakeSender struct {
	messages map[int64][]string
	lastMode tele.ParseMode
	err      error
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.messages == nil {
		f.messages = make(map[int64][]string)
	}

	chat, ok := to.(*tele.Chat)
	if !ok {
		return nil, fmt.Errorf("unexpected recipient type %T", to)
	}
	for _, opt := range opts {
		if mode, ok := opt.(tele.ParseMode); ok {
			f.lastMode = mode
		}
	}
	f.messages[chat.ID] = append(f.messages[chat.ID], fmt.Sprint(what))
	return &tele.Message{}, nil
}
