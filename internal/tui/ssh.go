package tui

import (
	"context"
	"fmt"

	"signal-desk/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/rs/zerolog/log"
)

// CredentialVerifier checks an account's email and password.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (domain.User, error)
}

type SSHConfig struct {
	Addr        string
	HostKeyPath string
}

// NewSSHServer serves the dashboard over SSH. The SSH username is the account
// email and the password is checked against the same accounts as the HTTP login.
func NewSSHServer(cfg SSHConfig, signals SignalQuerier, trends TrendQuerier, creds CredentialVerifier) (*ssh.Server, error) {
	sshLog := log.With().Str("component", "ssh").Logger()

	srv, err := wish.NewServer(
		wish.WithAddress(cfg.Addr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithPasswordAuth(passwordHandler(creds)),
		wish.WithMiddleware(
			bm.Middleware(sessionHandler(signals, trends)),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(&sshLog),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create ssh server: %w", err)
	}
	return srv, nil
}

func passwordHandler(creds CredentialVerifier) ssh.PasswordHandler {
	return func(ctx ssh.Context, password string) bool {
		if _, err := creds.Verify(ctx, ctx.User(), password); err != nil {
			return false
		}
		return true
	}
}

func sessionHandler(signals SignalQuerier, trends TrendQuerier) bm.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		m := NewAppModel(Services{Signals: signals, Trends: trends, Username: s.User()})
		if pty, _, ok := s.Pty(); ok {
			m.SetSize(pty.Window.Width, pty.Window.Height)
		}
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
}
