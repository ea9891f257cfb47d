package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/aetherhyt/HyStreamAlerts/internal/botrix"
	"github.com/aetherhyt/HyStreamAlerts/internal/kick"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	WebhookPath string `env:"WEBHOOK_PATH"`
	BotrixWSURL string `env:"BOTRIX_WS_URL"`
	PusherWSURL string `env:"PUSHER_WS_URL"`

	// ChatChannelTemplates overrides the chat channel candidate list:
	// comma-separated templates with {0} and {1} placeholders for the
	// primary and secondary chat id.
	ChatChannelTemplates string `env:"CHAT_CHANNEL_TEMPLATES"`

	DataFile string `env:"DATA_FILE" default:"subscribers.json"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	LogFile   string `env:"LOG_FILE"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.WebhookPath == "" {
		cfg.WebhookPath = kick.DefaultWebhookPath
	}
	if cfg.BotrixWSURL == "" {
		cfg.BotrixWSURL = botrix.DefaultAlertURL
	}
	if cfg.PusherWSURL == "" {
		cfg.PusherWSURL = botrix.DefaultChatURL
	}
}

func validate(cfg *Config) error {
	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with '/', got %q", cfg.WebhookPath)
	}
	for name, value := range map[string]string{
		"BOTRIX_WS_URL": cfg.BotrixWSURL,
		"PUSHER_WS_URL": cfg.PusherWSURL,
	} {
		if !strings.HasPrefix(value, "ws://") && !strings.HasPrefix(value, "wss://") {
			return fmt.Errorf("%s must be a ws:// or wss:// URL, got %q", name, value)
		}
	}
	if cfg.DataFile == "" {
		return fmt.Errorf("DATA_FILE is required")
	}
	return nil
}

// ChannelTemplates splits the configured template list, dropping empty
// entries. An empty result means the built-in candidate list applies.
func (c *Config) ChannelTemplates() []string {
	if c.ChatChannelTemplates == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(c.ChatChannelTemplates, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
