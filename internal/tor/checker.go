package tor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nao1215/torbar/internal/config"
)

// maxCheckBody caps how much of the check response is read.
const maxCheckBody = 64 << 10

// CheckResult is the check endpoint's verdict.
type CheckResult struct {
	// IsTor is true only when the endpoint returned boolean true.
	IsTor bool
	// IP is the address the endpoint saw. Log it under a redacted key.
	IP string
}

// Checker asks the check endpoint whether requests leave through Tor.
type Checker struct {
	url       string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithHTTPClient replaces the HTTP client used for the request.
func WithHTTPClient(c *http.Client) CheckerOption {
	return func(ch *Checker) { ch.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) CheckerOption {
	return func(ch *Checker) { ch.userAgent = ua }
}

// WithCheckLogger sets the logger.
func WithCheckLogger(l *slog.Logger) CheckerOption {
	return func(ch *Checker) { ch.logger = l }
}

// NewChecker returns a Checker for url. The default HTTP client goes out
// directly and times out after timeout.
func NewChecker(url string, timeout time.Duration, opts ...CheckerOption) *Checker {
	c := &Checker{
		url:       url,
		userAgent: config.DefaultUserAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewCheckerFromConfig builds the Checker described by cfg. With
// CheckViaSocks the request is routed through cfg.SocksAddress.
func NewCheckerFromConfig(cfg *config.Config, logger *slog.Logger) (*Checker, error) {
	opts := []CheckerOption{WithUserAgent(cfg.UserAgent), WithCheckLogger(logger)}
	if cfg.CheckViaSocks {
		client, err := NewClient(cfg.SocksAddress, cfg.NetworkTimeout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithHTTPClient(client.NewHTTPClient()))
	}
	return NewChecker(cfg.CheckURL, cfg.NetworkTimeout, opts...), nil
}

// Check performs one request and decodes the verdict.
func (c *Checker) Check(ctx context.Context) (CheckResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return CheckResult{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return CheckResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CheckResult{}, fmt.Errorf("%w: %d", ErrCheckStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCheckBody))
	if err != nil {
		return CheckResult{}, err
	}
	if !gjson.ValidBytes(body) {
		return CheckResult{}, ErrCheckBody
	}

	return CheckResult{
		IsTor: gjson.GetBytes(body, "IsTor").Type == gjson.True,
		IP:    gjson.GetBytes(body, "IP").String(),
	}, nil
}

// IsTor reports whether traffic currently egresses through Tor. Every
// failure reports false.
func (c *Checker) IsTor(ctx context.Context) bool {
	res, err := c.Check(ctx)
	if err != nil {
		c.logger.Debug("connectivity check failed", "url", c.url, "error", err)
		return false
	}
	c.logger.Debug("connectivity check", "is_tor", res.IsTor, "exit_ip", res.IP)
	return res.IsTor
}
