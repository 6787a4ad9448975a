package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"signal-desk/internal/domain"
)

type stubFeed struct {
	signals  []domain.Signal
	err      error
	lastN    int
	hasToken bool
}

func (s *stubFeed) Latest(ctx context.Context, n int) ([]domain.Signal, error) {
	s.lastN = n
	return s.signals, s.err
}

func (s *stubFeed) HasCredential() bool         { return s.hasToken }
func (s *stubFeed) PollInterval() time.Duration { return 90 * time.Second }

func TestNewBotRequiresToken(t *testing.T) {
	if _, err := NewBot(""); err == nil {
		t.Fatal("expected empty token to be rejected")
	}
}

func TestSignalsReplyFormatsLatest(t *testing.T) {
	second := sampleSignal()
	second.ID = "sig-2"
	second.Pair = "USD/JPY"
	feed := &stubFeed{signals: []domain.Signal{sampleSignal(), second}}
	cmds := NewCommands(feed, "http://localhost:8080", nil)

	reply, isHTML := cmds.signalsReply(context.Background())
	if !isHTML {
		t.Fatal("expected HTML reply")
	}
	if feed.lastN != latestSignalsShown {
		t.Fatalf("expected %d signals requested, got %d", latestSignalsShown, feed.lastN)
	}
	blocks := strings.Split(reply, "\n\n")
	if len(blocks) != 2 || !strings.Contains(blocks[1], "USD/JPY") {
		t.Fatalf("unexpected reply: %s", reply)
	}
}

func TestSignalsReplyEmptyAndError(t *testing.T) {
	cmds := NewCommands(&stubFeed{}, "", nil)
	if reply, isHTML := cmds.signalsReply(context.Background()); reply != "No signals available right now." || isHTML {
		t.Fatalf("unexpected empty reply: %q", reply)
	}

	cmds = NewCommands(&stubFeed{err: errors.New("login: authentication failed")}, "", nil)
	if reply, _ := cmds.signalsReply(context.Background()); !strings.HasPrefix(reply, "Unable to load signals:") {
		t.Fatalf("unexpected error reply: %q", reply)
	}

	cmds = NewCommands(nil, "", nil)
	if reply, _ := cmds.signalsReply(context.Background()); reply != "Signal feed unavailable" {
		t.Fatalf("unexpected nil feed reply: %q", reply)
	}
}

func TestStatusReply(t *testing.T) {
	cmds := NewCommands(&stubFeed{hasToken: true}, "http://api:8080", nil)
	want := "Bot online. Polling http://api:8080 every 90 seconds (session authenticated)."
	if got := cmds.statusReply(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if !strings.HasPrefix(cmds.startReply(), "Welcome") {
		t.Fatalf("unexpected start reply: %q", cmds.startReply())
	}
}
