package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Exchange.validate(); err != nil {
		return err
	}
	if err := c.Sheets.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	if c.Monitor.IntervalSeconds <= 0 {
		return fmt.Errorf("monitor.interval_seconds must be > 0")
	}
	return nil
}

func (e *ExchangeConfig) validate() error {
	if strings.TrimSpace(e.BaseURL) == "" {
		return fmt.Errorf("exchange.base_url cannot be empty")
	}
	if strings.TrimSpace(e.APIKey) == "" {
		return fmt.Errorf("exchange.api_key is required (or DELTA_API_KEY)")
	}
	if strings.TrimSpace(e.APISecret) == "" {
		return fmt.Errorf("exchange.api_secret is required (or DELTA_API_SECRET)")
	}
	return nil
}

func (s *SheetsConfig) validate() error {
	if strings.TrimSpace(s.SpreadsheetID) == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required (or GOOGLE_SHEET_ID)")
	}
	if strings.TrimSpace(s.Worksheet) == "" {
		return fmt.Errorf("sheets.worksheet cannot be empty")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	tg := n.Telegram
	if !tg.Enabled {
		return nil
	}
	if strings.TrimSpace(tg.BotToken) == "" {
		return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
	}
	if strings.TrimSpace(tg.ChatID) == "" {
		return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
	}
	return nil
}
