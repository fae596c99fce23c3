package delta

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"deltawatch/internal/config"
)

const maxResponseBytes = 8 << 20

// Client talks to the Delta Exchange REST API. The monitor only uses two
// read-only GET endpoints, both authenticated with an HMAC-SHA256 signature
// over method + timestamp + path + body sent as the api-key / signature /
// timestamp headers.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	apiKey     string
	apiSecret  string
	nowFn      func() time.Time
}

// NewClient constructs an exchange client from configuration.
func NewClient(cfg config.ExchangeConfig) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("exchange.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing exchange.base_url failed: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     strings.TrimSpace(cfg.APIKey),
		apiSecret:  strings.TrimSpace(cfg.APISecret),
		nowFn:      time.Now,
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetNowFunc sets the timestamp source for testing.
func (c *Client) SetNowFunc(fn func() time.Time) {
	c.nowFn = fn
}

// Positions fetches the open margined positions. A response without the
// expected result list degrades to an empty slice rather than an error.
func (c *Client) Positions(ctx context.Context) ([]gjson.Result, error) {
	return c.getResult(ctx, "/v2/positions/margined")
}

// Tickers fetches the full ticker list.
func (c *Client) Tickers(ctx context.Context) ([]gjson.Result, error) {
	return c.getResult(ctx, "/v2/tickers")
}

func (c *Client) getResult(ctx context.Context, path string) ([]gjson.Result, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	result := gjson.GetBytes(body, "result")
	if !result.IsArray() {
		return nil, nil
	}
	return result.Array(), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ts := strconv.FormatInt(c.nowFn().Unix(), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String()+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building exchange request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("signature", c.sign(http.MethodGet, path, "", ts))
	req.Header.Set("timestamp", ts)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling exchange failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading exchange response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		if snippet == "" {
			return nil, fmt.Errorf("exchange returned %s", resp.Status)
		}
		return nil, fmt.Errorf("exchange returned %s: %s", resp.Status, snippet)
	}
	return data, nil
}

// sign computes the hex HMAC-SHA256 digest of method + timestamp + path + body.
func (c *Client) sign(method, path, body, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(method + timestamp + path + body))
	return hex.EncodeToString(mac.Sum(nil))
}
