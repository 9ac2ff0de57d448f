// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type BotConfig struct {
	Token      string `yaml:"token"`
	GroupID    int64  `yaml:"group_id"`
	InviteLink string `yaml:"invite_link"`
}

type MercadoPagoConfig struct {
	AccessToken     string `yaml:"access_token"`
	BaseURL         string `yaml:"base_url"` // override for sandbox/tests
	NotificationURL string `yaml:"notification_url"`
}

type PaymentConfig struct {
	MercadoPago MercadoPagoConfig `yaml:"mercadopago"`
}

type WebConfig struct {
	Port        int    `yaml:"port"`
	AdminAPIKey string `yaml:"admin_api_key"`
	JWTSecret   string `yaml:"jwt_secret"`
}

type SweepConfig struct {
	ExpiryInterval   time.Duration `yaml:"expiry_interval"`
	ReminderInterval time.Duration `yaml:"reminder_interval"`
	WarningDays      []int         `yaml:"warning_days"`
	DedupWindow      time.Duration `yaml:"dedup_window"`
}

type PlanConfig struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	PriceCents   int64  `yaml:"price_cents"`
	DurationDays int    `yaml:"duration_days"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Bot      BotConfig      `yaml:"bot"`
	Payment  PaymentConfig  `yaml:"payment"`
	Web      WebConfig      `yaml:"web"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Plans    []PlanConfig   `yaml:"plans"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8000
	}
	if cfg.Sweep.ExpiryInterval <= 0 {
		cfg.Sweep.ExpiryInterval = time.Hour
	}
	if cfg.Sweep.ReminderInterval <= 0 {
		cfg.Sweep.ReminderInterval = 12 * time.Hour
	}
	if len(cfg.Sweep.WarningDays) == 0 {
		cfg.Sweep.WarningDays = []int{7, 3, 1}
	}
	if cfg.Sweep.DedupWindow <= 0 {
		cfg.Sweep.DedupWindow = 24 * time.Hour
	}
	if len(cfg.Plans) == 0 {
		cfg.Plans = []PlanConfig{
			{ID: "monthly", Name: "Plano Mensal", PriceCents: 2990, DurationDays: 30},
			{ID: "yearly", Name: "Plano Anual", PriceCents: 29990, DurationDays: 365},
		}
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required")
	}
	if !dev && cfg.Payment.MercadoPago.AccessToken == "" {
		return nil, errors.New("payment.mercadopago.access_token is required")
	}
	for _, p := range cfg.Plans {
		if p.ID == "" || p.PriceCents <= 0 || p.DurationDays <= 0 {
			return nil, fmt.Errorf("invalid plan %q in config", p.ID)
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
