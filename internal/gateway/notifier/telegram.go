package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Telegram pushes alert text to a chat via the Bot API. Delivery is a single
// attempt: the caller decides what a failed notification means.
type Telegram struct {
	BotToken string
	ChatID   string
	Client   *http.Client

	baseURL string
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		Client:   &http.Client{Timeout: 5 * time.Second},
		baseURL:  "https://api.telegram.org",
	}
}

// SetBaseURL points the notifier at a different API host for testing.
func (t *Telegram) SetBaseURL(base string) {
	t.baseURL = base
}

// Configured reports whether the notifier has enough credentials to send.
func (t *Telegram) Configured() bool {
	return t != nil && t.BotToken != "" && t.ChatID != ""
}

// SendText sends a plain text message. An unconfigured notifier is a no-op.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	if !t.Configured() {
		return nil
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.BotToken)

	payload := map[string]any{
		"chat_id": t.ChatID,
		"text":    text,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("telegram status=%d", resp.StatusCode)
	}
	return nil
}
