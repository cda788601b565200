package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Gemini struct {
		ApiKey          string  `yaml:"apiKey"`
		Model           string  `yaml:"model"`
		Temperature     float32 `yaml:"temperature"`
		TopK            float32 `yaml:"topK"`
		TopP            float32 `yaml:"topP"`
		MaxOutputTokens int32   `yaml:"maxOutputTokens"`
	} `yaml:"gemini"`

	Retry struct {
		MaxAttempts int           `yaml:"maxAttempts"`
		BaseDelay   time.Duration `yaml:"baseDelay"`
	} `yaml:"retry"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		Expiry int    `yaml:"expiry"` // Token expiry in minutes
	} `yaml:"jwt"`

	Debate struct {
		TurnSeconds int `yaml:"turnSeconds"`
	} `yaml:"debate"`

	RateLimit struct {
		Generations int           `yaml:"generations"` // per user per window
		Window      time.Duration `yaml:"window"`
	} `yaml:"rateLimit"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// LoadConfig reads the configuration file, applies environment overrides and
// fills defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with only defaults and environment values,
// for tools that run without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv(getenv func(string) string) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.Gemini.ApiKey, "GEMINI_API_KEY")
	override(&c.Database.URI, "MONGO_URI")
	override(&c.Redis.Addr, "REDIS_ADDR")
	override(&c.JWT.Secret, "JWT_SECRET")
	override(&c.Log.Level, "EQCOACH_LOG_LEVEL")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 1313
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-pro"
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.7
	}
	if c.Gemini.TopK == 0 {
		c.Gemini.TopK = 40
	}
	if c.Gemini.TopP == 0 {
		c.Gemini.TopP = 0.95
	}
	if c.Gemini.MaxOutputTokens == 0 {
		c.Gemini.MaxOutputTokens = 1024
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = time.Second
	}
	if c.JWT.Expiry <= 0 {
		c.JWT.Expiry = 1440
	}
	if c.Debate.TurnSeconds <= 0 {
		c.Debate.TurnSeconds = 120
	}
	if c.RateLimit.Generations <= 0 {
		c.RateLimit.Generations = 30
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
