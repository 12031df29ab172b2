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

type ServerConfig struct {
	Port        int           `yaml:"port"`
	APIKey      string        `yaml:"api_key"`
	AdminSecret string        `yaml:"admin_secret"` // HMAC secret for admin session tokens
	SessionTTL  time.Duration `yaml:"session_ttl"`
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
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	OpenAIKey         string `yaml:"openai_key"`
	GeminiKey         string `yaml:"gemini_key"`
	GeminiURL         string `yaml:"gemini_url"`
	TextModel         string `yaml:"text_model"`
	ImageModel        string `yaml:"image_model"`
	ImageSize         string `yaml:"image_size"`
	PlaceholderImages bool   `yaml:"placeholder_images"` // skip real image generation (dev)
}

type ShopifyConfig struct {
	APIVersion string `yaml:"api_version"`
	// Default development-store domain suffix used when a run supplies no
	// credentials and the store is provisioned platform-side only.
	DevDomainSuffix string `yaml:"dev_domain_suffix"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type WorkerConfig struct {
	Count        int           `yaml:"count"`
	PollInterval time.Duration `yaml:"poll_interval"`
	JobLockTTL   time.Duration `yaml:"job_lock_ttl"`
}

type RateLimitConfig struct {
	StoreCreations int           `yaml:"store_creations"`
	Window         time.Duration `yaml:"window"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Shopify   ShopifyConfig   `yaml:"shopify"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Worker    WorkerConfig    `yaml:"worker"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Security  SecurityConfig  `yaml:"security"`

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
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.AI.TextModel == "" {
		cfg.AI.TextModel = "gpt-4o-mini"
	}
	if cfg.AI.ImageModel == "" {
		cfg.AI.ImageModel = "dall-e-3"
	}
	if cfg.AI.ImageSize == "" {
		cfg.AI.ImageSize = "1024x1024"
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2025-01"
	}
	if cfg.Shopify.DevDomainSuffix == "" {
		cfg.Shopify.DevDomainSuffix = ".myshopify.com"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "data/products.json"
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 4
	}
	if cfg.Worker.PollInterval <= 0 {
		cfg.Worker.PollInterval = 2 * time.Second
	}
	if cfg.Worker.JobLockTTL <= 0 {
		cfg.Worker.JobLockTTL = 15 * time.Minute
	}
	if cfg.RateLimit.StoreCreations <= 0 {
		cfg.RateLimit.StoreCreations = 5
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if !dev && cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" {
		return nil, errors.New("no AI provider configured: set ai.openai_key or ai.gemini_key")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
