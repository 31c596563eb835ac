// Package config is the bot's configuration: the core sections plus
// storage, health and the deployment details quoted to users.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/vacancybot/core/config"
	coredatabase "github.com/m3rciful/vacancybot/core/database"
	"github.com/m3rciful/vacancybot/internal/storage"
)

const (
	defaultPaymentWindow = 3 * time.Minute
	defaultDBPort        = "5432"
)

// StorageConfig selects the record store.
type StorageConfig struct {
	Backend string `yaml:"backend" envconfig:"STORAGE_BACKEND"`
}

// HealthConfig configures the /healthz listener. Empty Listen disables it.
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// BotConfig holds what the dialogs show or enforce.
type BotConfig struct {
	// RequiredChannel is the @username users must join and vacancies are posted to.
	RequiredChannel string        `yaml:"required_channel" envconfig:"REQUIRED_CHANNEL"`
	PaymentWindow   time.Duration `yaml:"payment_window" envconfig:"PAYMENT_WINDOW"`
	CardNumber      string        `yaml:"card_number" envconfig:"PAYMENT_CARD"`
	HandoffContact  string        `yaml:"handoff_contact" envconfig:"HANDOFF_CONTACT"`
	SupportPhone    string        `yaml:"support_phone" envconfig:"SUPPORT_PHONE"`
	SupportUsername string        `yaml:"support_username" envconfig:"SUPPORT_USERNAME"`
}

// Config is the complete bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Health   HealthConfig        `yaml:"health"`
	Bot      BotConfig           `yaml:"bot"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path, applies the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the bot sections and fills defaults.
func Normalize(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if backend == "" {
		backend = storage.BackendPostgres
	}
	switch backend {
	case storage.BackendPostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required when storage.backend is 'postgres'")
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = defaultDBPort
		}
	case storage.BackendMemory:
	default:
		return fmt.Errorf("invalid storage.backend %q; allowed: postgres, memory", cfg.Storage.Backend)
	}
	cfg.Storage.Backend = backend

	ch := strings.TrimSpace(cfg.Bot.RequiredChannel)
	if ch == "" {
		return fmt.Errorf("bot.required_channel is required")
	}
	if !strings.HasPrefix(ch, "@") {
		ch = "@" + ch
	}
	cfg.Bot.RequiredChannel = ch

	if cfg.Bot.PaymentWindow < 0 {
		return fmt.Errorf("bot.payment_window must be >= 0")
	}
	if cfg.Bot.PaymentWindow == 0 {
		cfg.Bot.PaymentWindow = defaultPaymentWindow
	}
	return nil
}
