// Package walletapi is the HTTP client for the wallet session and payload endpoints
package walletapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	perr "walletsync/internal/platform/errors"
	"walletsync/internal/platform/logger"
	dom "walletsync/internal/services/auth/domain"
)

const (
	baseURLDefault = "https://wallet.example.invalid"
	defaultTimeout = 10 * time.Second
	defaultUA      = "walletsync"
	maxBody        = 1 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	APICode   string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the wallet API, it never retries on its own
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

var _ dom.SessionSource = (*Client)(nil)

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("walletapi"),
		now:  time.Now,
	}
}

// SessionID opens a session for guid
func (c *Client) SessionID(ctx context.Context, guid string) (string, error) {
	form := url.Values{}
	form.Set("guid", guid)
	status, body, err := c.do(ctx, http.MethodPost, "/wallet/sessions", "", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	if status/100 != 2 {
		return "", statusErr("session", status, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeProtocol, "session response")
	}
	if out.Token == "" {
		return "", perr.Protocolf("session response has no token")
	}
	return out.Token, nil
}

// EncryptedPayload fetches the wallet payload, a 4xx answer is returned as ErrorBody for the caller to classify
func (c *Client) EncryptedPayload(ctx context.Context, guid, sessionID string) (dom.PayloadResponse, error) {
	path := "/wallet/" + url.PathEscape(guid) + "?format=json&resend_code=false"
	status, body, err := c.do(ctx, http.MethodGet, path, sessionID, nil)
	if err != nil {
		return dom.PayloadResponse{}, err
	}
	switch {
	case status/100 == 2:
		return dom.PayloadResponse{Status: status, Body: string(body)}, nil
	case status/100 == 4:
		return dom.PayloadResponse{Status: status, ErrorBody: string(body)}, nil
	default:
		return dom.PayloadResponse{}, statusErr("payload", status, body)
	}
}

// PollAuthStatus samples the payload endpoint once, the answer keeps its status class
func (c *Client) PollAuthStatus(ctx context.Context, guid, sessionID string) (dom.PayloadResponse, error) {
	return c.EncryptedPayload(ctx, guid, sessionID)
}

// SubmitTwoFactor sends a typed code and returns the payload fragment it unlocks
func (c *Client) SubmitTwoFactor(ctx context.Context, sessionID, guid, code string) (string, error) {
	form := url.Values{}
	form.Set("method", "get-wallet")
	form.Set("guid", guid)
	form.Set("payload", code)
	form.Set("length", strconv.Itoa(len(code)))
	form.Set("format", "plain")
	if c.opts.APICode != "" {
		form.Set("api_code", c.opts.APICode)
	}
	status, body, err := c.do(ctx, http.MethodPost, "/wallet", sessionID, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	switch {
	case status/100 == 2:
		return string(body), nil
	case status/100 == 4:
		return "", perr.Credentialf("second factor rejected with status %d", status)
	default:
		return "", statusErr("second factor", status, body)
	}
}

func (c *Client) do(ctx context.Context, method, path, sessionID string, form io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, form)
	if err != nil {
		return 0, nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "walletapi new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if sessionID != "" {
		req.Header.Set("Authorization", "Bearer "+sessionID)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "walletapi %s %s", method, routeOf(path))
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", routeOf(path)).Msg("walletapi close body failed")
		}
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return 0, nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "walletapi read body")
	}
	if len(body) > maxBody {
		return 0, nil, perr.Protocolf("walletapi %s %s body exceeds %d bytes", method, routeOf(path), maxBody)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", routeOf(path)).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("walletapi http response")
	return resp.StatusCode, body, nil
}

// statusErr maps 5xx and 429 to retryable errors and the rest to protocol errors
func statusErr(what string, status int, body []byte) error {
	tail := string(body)
	if len(tail) > 256 {
		tail = tail[:256]
	}
	switch {
	case status == http.StatusTooManyRequests:
		return perr.Newf(perr.ErrorCodeTooManyRequests, "walletapi %s rate limited", what)
	case status >= 500:
		return perr.Unavailablef("walletapi %s status %d", what, status)
	default:
		return perr.Protocolf("walletapi %s unexpected status %d body %s", what, status, tail)
	}
}

// routeOf drops the query and the guid so logs carry no identifiers
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if strings.HasPrefix(path, "/wallet/") && path != "/wallet/sessions" {
		return "/wallet/{guid}"
	}
	return path
}
