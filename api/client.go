package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"qstack-client/internal/status"
	"qstack-client/models"
)

// Result is the backend's envelope for mutating requests. OK false is
// a logical failure, not a transport one; Message is shown to the
// viewer either way.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Client talks to the qstack backend. All responses are decoded into
// the typed entities of the models package at this boundary; untyped
// maps never escape.
type Client struct {
	// baseURL is the backend root, e.g. http://localhost:8090.
	baseURL string

	// hc is the http client. The cookie jar carries the session
	// cookie set during login.
	hc *http.Client
}

// NewClient creates a backend client with the given base URL and
// request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		hc: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrTransport, err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrTransport, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: backend returned %d", status.ErrTransport, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", status.ErrTransport, req.URL.Path, err)
	}
	return nil
}

// Whoami fetches the current session profile.
func (c *Client) Whoami(ctx context.Context) (models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.get(ctx, "/api/auth/whoami", &profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// Tickets fetches the full ticket set. There is no pagination; the
// queue is always fetched whole.
func (c *Client) Tickets(ctx context.Context) ([]models.Ticket, error) {
	var resp struct {
		OK      bool            `json:"ok"`
		Tickets []models.Ticket `json:"tickets"`
	}
	if err := c.get(ctx, "/api/queue", &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("%w: tickets fetch failed", status.ErrBackend)
	}
	return resp.Tickets, nil
}

// CheckClaimed fetches the viewer's current claim. An absent claimed
// field means "not claimed"; a present one is the ticket id.
func (c *Client) CheckClaimed(ctx context.Context) (models.ClaimState, error) {
	var resp struct {
		OK      bool    `json:"ok"`
		Claimed *string `json:"claimed"`
	}
	if err := c.get(ctx, "/api/queue/claimed", &resp); err != nil {
		return models.Unclaimed, err
	}
	if !resp.OK {
		return models.Unclaimed, fmt.Errorf("%w: claim check failed", status.ErrBackend)
	}
	if resp.Claimed == nil {
		return models.Unclaimed, nil
	}
	id, err := strconv.Atoi(*resp.Claimed)
	if err != nil {
		return models.Unclaimed, fmt.Errorf("%w: claimed id %q is not numeric", status.ErrTransport, *resp.Claimed)
	}
	return models.ClaimState{TicketID: id, Claimed: true}, nil
}

// Claim claims the ticket for the viewer. The returned Result carries
// the backend's own success flag and message; err is transport-only.
func (c *Client) Claim(ctx context.Context, id int) (Result, error) {
	var res Result
	err := c.post(ctx, "/api/queue/claim", map[string]int{"id": id}, &res)
	return res, err
}

// Unclaim releases the viewer's claim on the ticket.
func (c *Client) Unclaim(ctx context.Context, id int) (Result, error) {
	var res Result
	err := c.post(ctx, "/api/queue/unclaim", map[string]int{"id": id}, &res)
	return res, err
}

// Resolve marks the claimed ticket resolved. creator is the ticket
// creator's display name, echoed back for the feedback request.
func (c *Client) Resolve(ctx context.Context, id int, creator string) (Result, error) {
	var res Result
	err := c.post(ctx, "/api/queue/resolve", map[string]any{"id": id, "creator": creator}, &res)
	return res, err
}

// SetPhone stores the viewer's phone contact. The endpoint uses a
// success/error envelope rather than ok/message; it is translated
// here so callers only ever see Result.
func (c *Client) SetPhone(ctx context.Context, phone string) (Result, error) {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.post(ctx, "/api/auth/set-phone", map[string]string{"phone": phone}, &resp); err != nil {
		return Result{}, err
	}
	message := resp.Error
	if resp.Success {
		message = "Phone number saved"
	}
	return Result{OK: resp.Success, Message: message}, nil
}

// UpdateUser updates profile fields including the preferred contact
// method.
func (c *Client) UpdateUser(ctx context.Context, update models.UserUpdate) (Result, error) {
	var res Result
	err := c.post(ctx, "/api/auth/update-user", update, &res)
	return res, err
}

// Rankings fetches the mentor leaderboard.
func (c *Client) Rankings(ctx context.Context) ([]models.MentorRanking, error) {
	var rankings []models.MentorRanking
	if err := c.get(ctx, "/api/queue/ranking", &rankings); err != nil {
		return nil, err
	}
	return rankings, nil
}

// Logout clears the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.get(ctx, "/api/auth/logout", nil)
}

// DiscordLoginURL is the browser target that begins the Discord OAuth
// flow. The client never follows it itself.
func (c *Client) DiscordLoginURL() string {
	return c.baseURL + "/api/auth/discord/login"
}
