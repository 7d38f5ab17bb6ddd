package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-datespan/internal/config"
)

// Credentials holds optional HTTP Basic Auth data for a remote address book.
type Credentials struct {
	User string
	Pass string
}

// empty reports whether no authentication should be sent.
func (c Credentials) empty() bool {
	return c.User == "" && c.Pass == ""
}

// ErrTooLarge is returned while reading a body that exceeds the fetcher's cap.
var ErrTooLarge = errors.New(config.ErrTooLarge)

// VCardFetcher retrieves a raw vCard stream. The AgeBook depends on it so
// tests can replace the network.
type VCardFetcher interface {
	Fetch(ctx context.Context, url string, cred Credentials) (io.ReadCloser, error)
}

// HTTPFetcher implements VCardFetcher over net/http.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64 // Body cap; reads past it fail with ErrTooLarge.
}

// NewHTTPFetcher creates a new instance of HTTPFetcher with configured timeouts.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// Fetch downloads the address book at targetURL. Only http and https are
// allowed, query strings are kept out of the logs, and reading past MaxBytes
// fails with ErrTooLarge instead of silently truncating the address book.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string, cred Credentials) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)
	log.Debug("Initiating vCard download")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if !cred.empty() {
		req.SetBasicAuth(cred.User, cred.Pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn("Server returned error status", slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("server returned unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	log.Info("vCards downloading", slog.Int64("content_length", resp.ContentLength))

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	return &cappedBody{body: resp.Body, limit: limit, remain: limit, log: log}, nil
}

// cappedBody reads at most limit bytes and reports anything beyond as
// ErrTooLarge.
type cappedBody struct {
	body   io.ReadCloser
	limit  int64
	remain int64
	log    *slog.Logger
}

func (c *cappedBody) Read(p []byte) (int, error) {
	if c.remain <= 0 {
		// A body ending exactly at the cap is fine; one more byte is not.
		var extra [1]byte
		n, err := c.body.Read(extra[:])
		if n > 0 {
			c.log.Warn(config.ErrTooLarge, slog.Int64(config.LogKeySizeBytes, c.limit))
			return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, c.limit)
		}
		return 0, err
	}
	if int64(len(p)) > c.remain {
		p = p[:c.remain]
	}
	n, err := c.body.Read(p)
	c.remain -= int64(n)
	return n, err
}

func (c *cappedBody) Close() error { return c.body.Close() }
