package delta

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltawatch/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.ExchangeConfig{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		APISecret: "test-secret",
	})
	require.NoError(t, err)
	client.SetHTTPClient(server.Client())
	return client, server
}

func TestPositionsSignsRequest(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	var gotPath, gotKey, gotSig, gotTS string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		gotSig = r.Header.Get("signature")
		gotTS = r.Header.Get("timestamp")
		w.Write([]byte(`{"result": []}`))
	})
	client.SetNowFunc(func() time.Time { return fixed })

	_, err := client.Positions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/v2/positions/margined", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "1700000000", gotTS)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte("GET" + "1700000000" + "/v2/positions/margined"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSig)
}

func TestTickersParsesResult(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/tickers", r.URL.Path)
		w.Write([]byte(`{"success": true, "result": [{"symbol": "BTCUSD"}, {"symbol": "ETHUSD"}]}`))
	})

	tickers, err := client.Tickers(context.Background())
	require.NoError(t, err)
	require.Len(t, tickers, 2)
	assert.Equal(t, "BTCUSD", tickers[0].Get("symbol").String())
}

func TestGetResultToleratesWrongShape(t *testing.T) {
	for _, body := range []string{
		`{"result": {"not": "a list"}}`,
		`{"success": true}`,
		`not json at all`,
	} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		positions, err := client.Positions(context.Background())
		require.NoError(t, err)
		assert.Empty(t, positions)
	}
}

func TestGetSurfacesHTTPErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_api_key"}`, http.StatusUnauthorized)
	})

	_, err := client.Positions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid_api_key")
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient(config.ExchangeConfig{BaseURL: "  "})
	assert.Error(t, err)

	client, err := NewClient(config.ExchangeConfig{BaseURL: "https://api.india.delta.exchange/"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.india.delta.exchange", client.baseURL.String())
}
