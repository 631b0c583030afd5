package engine

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// DefaultMaxBodyBytes caps response bodies; watch pages run to a few MB.
const DefaultMaxBodyBytes = 6 * 1024 * 1024

// Fetcher sends one HTTP request and returns body bytes and status code.
// Implementations never retry and never mutate shared client state.
type Fetcher interface {
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, int, error)
}

// FetcherOptions configures an explicitly constructed client.
type FetcherOptions struct {
	Timeout      time.Duration
	VerifyTLS    bool
	ProxyURL     string // empty = direct connection
	MaxBodyBytes int64
}

func (o FetcherOptions) maxBody() int64 {
	if o.MaxBodyBytes > 0 {
		return o.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

// HTTPFetcher is a Fetcher over net/http.
type HTTPFetcher struct {
	client   *http.Client
	maxBody  int64
	proxyURL string
}

// NewHTTPFetcher builds a dedicated *http.Client for the given options.
func NewHTTPFetcher(opts FetcherOptions) (*HTTPFetcher, error) {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 15 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: !opts.VerifyTLS}, //nolint:gosec // opt-in via VERIFY_TLS=false
	}
	if opts.ProxyURL != "" {
		pu, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", redactURLError(err))
		}
		transport.Proxy = http.ProxyURL(pu)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		maxBody:  opts.maxBody(),
		proxyURL: opts.ProxyURL,
	}, nil
}

// Do implements Fetcher.
func (f *HTTPFetcher) Do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, redactRequestError(err, rawURL, f.proxyURL)
	}
	defer resp.Body.Close()

	data, err := readResponseBody(resp.Header.Get("Content-Encoding"), resp.Body, f.maxBody)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// BrowserFetcher wraps tls-client with a Chrome TLS fingerprint.
// Requests appear as Chrome 131+ to TLS fingerprinting (JA3 hash).
type BrowserFetcher struct {
	client   tls_client.HttpClient
	maxBody  int64
	proxyURL string
}

// NewBrowserFetcher creates a fetcher that impersonates Chrome 131.
func NewBrowserFetcher(opts FetcherOptions) (*BrowserFetcher, error) {
	timeout := int(opts.Timeout / time.Second)
	if timeout <= 0 {
		timeout = 30
	}
	jar := tls_client.NewCookieJar()
	clientOpts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(timeout),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithCookieJar(jar),
	}
	if !opts.VerifyTLS {
		clientOpts = append(clientOpts, tls_client.WithInsecureSkipVerify())
	}
	if opts.ProxyURL != "" {
		clientOpts = append(clientOpts, tls_client.WithProxyUrl(opts.ProxyURL))
	}
	client, err := tls_client.NewHttpClient(nil, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("tls-client init: %w", err)
	}
	return &BrowserFetcher{client: client, maxBody: opts.maxBody(), proxyURL: opts.ProxyURL}, nil
}

// Do implements Fetcher with Chrome-like header order.
func (bf *BrowserFetcher) Do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := fhttp.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// Chrome-like header order matters for fingerprinting
	req.Header[fhttp.HeaderOrderKey] = []string{
		"accept",
		"accept-language",
		"accept-encoding",
		"content-type",
		"referer",
		"cookie",
		"user-agent",
	}

	resp, err := bf.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("tls request %s: %w", RedactURL(rawURL), redactRequestError(err, rawURL, bf.proxyURL))
	}
	defer resp.Body.Close()

	data, err := readResponseBody(resp.Header.Get("Content-Encoding"), resp.Body, bf.maxBody)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// NewFetcher returns the Chrome-fingerprinted fetcher when browser is set, net/http otherwise.
func NewFetcher(opts FetcherOptions, browser bool) (Fetcher, error) {
	if browser {
		bf, err := NewBrowserFetcher(opts)
		if err != nil {
			return nil, err
		}
		return bf, nil
	}
	hf, err := NewHTTPFetcher(opts)
	if err != nil {
		return nil, err
	}
	return hf, nil
}

// RedactURL drops credentials from a URL so it can be logged or shown to users.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparsable url>"
	}
	if u.User != nil {
		u.User = url.User("redacted")
	}
	q := u.Query()
	changed := false
	for _, k := range secretQueryKeys {
		if q.Has(k) {
			q.Set(k, "redacted")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// secretQueryKeys are query parameters that carry credentials.
var secretQueryKeys = []string{"api_key", "apikey", "key", "token"}

// urlSecrets returns the credential values embedded in rawURL.
func urlSecrets(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var out []string
	if u.User != nil {
		out = append(out, u.User.Username())
		if pw, ok := u.User.Password(); ok {
			out = append(out, pw)
		}
	}
	q := u.Query()
	for _, k := range secretQueryKeys {
		out = append(out, q.Get(k))
	}
	return out
}

// redactedError carries a scrubbed message; errors.Is/As still reach the cause.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// redactRequestError redacts the URL of a transport error and scrubs any
// credential of the request or proxy URL left elsewhere in its message.
func redactRequestError(err error, urls ...string) error {
	err = redactURLError(err)
	msg := err.Error()
	scrubbed := msg
	for _, u := range urls {
		for _, secret := range urlSecrets(u) {
			if len(secret) < 4 {
				continue
			}
			scrubbed = strings.ReplaceAll(scrubbed, secret, "redacted")
			if esc := url.QueryEscape(secret); esc != secret {
				scrubbed = strings.ReplaceAll(scrubbed, esc, "redacted")
			}
		}
	}
	if scrubbed == msg {
		return err
	}
	return &redactedError{msg: scrubbed, err: err}
}

func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: RedactURL(ue.URL), Err: ue.Err}
	}
	return err
}
