package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signal-desk/internal/domain"
)

const sessionCookieName = "session"

// APIClient talks to the signal server's login and signal query endpoints.
type APIClient struct {
	baseURL  string
	email    string
	password string
	http     *http.Client
}

func NewAPIClient(baseURL, email, password string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &APIClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) BaseURL() string {
	return c.baseURL
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type signalsResponse struct {
	Signals []domain.Signal `json:"signals"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login exchanges the configured credentials for a session token. Rejected credentials
// yield ErrAuthentication; anything else that goes wrong is ErrTransient.
func (c *APIClient) Login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{Email: c.email, Password: c.password})
	if err != nil {
		return "", fmt.Errorf("encode login: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: login: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return "", fmt.Errorf("%w: %s", domain.ErrAuthentication, errorDetail(resp))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: login: %s", domain.ErrTransient, errorDetail(resp))
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode login: %w", domain.ErrTransient, err)
	}
	if out.Token != "" {
		return out.Token, nil
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName && ck.Value != "" {
			return ck.Value, nil
		}
	}
	return "", fmt.Errorf("%w: no session token in login response", domain.ErrTransient)
}

// FetchSignals returns the quality-filtered signal set, newest first. An expired or
// missing session yields ErrAuthorization.
func (c *APIClient) FetchSignals(ctx context.Context, token string, limit int) ([]domain.Signal, error) {
	u := c.baseURL + "/api/signals"
	if limit > 0 {
		u += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build signals request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch signals: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthorization, errorDetail(resp))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: fetch signals: %s", domain.ErrTransient, errorDetail(resp))
	}

	var out signalsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode signals: %w", domain.ErrTransient, err)
	}
	return out.Signals, nil
}

func errorDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e errorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return fmt.Sprintf("%d %s", resp.StatusCode, e.Error)
	}
	return resp.Status
}
