// Package portal talks to captive-portal login endpoints.
package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/config"
)

const (
	loginTimeout = 15 * time.Second
	probeTimeout = 5 * time.Second

	// loginMode is the fixed form value these portals expect for an
	// authentication request.
	loginMode = "191"
)

// Result is the outcome of one login attempt. Err is set when the
// request itself failed; the attempt is still recorded either way.
type Result struct {
	SessionToken string
	Status       string
	Message      string
	Err          error
}

// OK reports whether the portal accepted the login.
func (r Result) OK() bool { return r.Status == "200" }

// Client performs login POSTs and reachability probes.
type Client struct {
	http *http.Client
	log  *zap.Logger
}

// NewClient returns a portal client with a bounded request timeout.
func NewClient(log *zap.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: loginTimeout},
		log:  log,
	}
}

// Login posts the authentication form to the profile's login URL. The
// session token (the portal's "a" parameter) is the request's unix
// timestamp.
func (c *Client) Login(ctx context.Context, p config.Profile) Result {
	token := strconv.FormatInt(time.Now().Unix(), 10)

	form := url.Values{}
	form.Set("mode", loginMode)
	form.Set("username", p.Username)
	form.Set("password", p.Password)
	form.Set("a", token)
	form.Set("producttype", p.ProductType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.LoginURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Result{SessionToken: token, Status: "FAILED", Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("login request failed", zap.String("url", p.LoginURL), zap.Error(err))
		return Result{SessionToken: token, Status: "FAILED", Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.log.Error("reading login response failed", zap.Error(err))
		return Result{SessionToken: token, Status: "FAILED", Message: err.Error(), Err: err}
	}

	message := ExtractMessage(string(body))
	c.log.Info("login attempt completed",
		zap.String("url", p.LoginURL),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message))

	return Result{
		SessionToken: token,
		Status:       strconv.Itoa(resp.StatusCode),
		Message:      message,
	}
}

// Probe checks whether the login URL is reachable, without logging in.
func (c *Client) Probe(ctx context.Context, loginURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, loginURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", loginURL, err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

var messageRe = regexp.MustCompile(`<message><!\[CDATA\[(.*?)\]\]></message>`)

// ExtractMessage pulls the human-readable message out of the portal's
// XML response body.
func ExtractMessage(body string) string {
	if m := messageRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return "Unknown response"
}
