package config

import "strings"

// Config is the full deltawatch configuration.
type Config struct {
	App      AppConfig      `toml:"app"`
	Exchange ExchangeConfig `toml:"exchange"`
	Sheets   SheetsConfig   `toml:"sheets"`
	Notify   NotifyConfig   `toml:"notify"`
	Monitor  MonitorConfig  `toml:"monitor"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// ExchangeConfig describes the Delta Exchange REST endpoint and credentials.
type ExchangeConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SheetsConfig describes the Google spreadsheet holding the alert rules.
// Credentials can come from a service-account file or inline JSON; when both
// are empty the client falls back to application-default credentials.
type SheetsConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id"`
	Worksheet       string `toml:"worksheet"`
	CredentialsFile string `toml:"credentials_file"`
	CredentialsJSON string `toml:"credentials_json"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// MonitorConfig controls the refresh cycle.
type MonitorConfig struct {
	IntervalSeconds int  `toml:"interval_seconds"`
	RunImmediately  bool `toml:"run_immediately"`
}

// keySet records which config keys were set explicitly, so defaults do not
// stomp on deliberate zero values.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}
