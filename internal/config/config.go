package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

const (
	Host           = "127.0.0.1"
	DefaultPort    = "5001"
	DefaultBaseURL = "https://aihubmix.com/gemini"
	APIKeyEnv      = "AIHUBMIX_API_KEY"
)

type Config struct {
	Port        string
	BaseURL     string
	APIKeyParam string
	LogLevel    string
	Lambda      bool
}

// Addr is the loopback address the HTTP server binds to.
func (c Config) Addr() string {
	return Host + ":" + c.Port
}

// Load reads .env from the working directory, if present, then the process
// environment. Variables already set in the environment take precedence.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		v, ok := lookup(key)
		return lo.Ternary(ok && v != "", v, fallback)
	}

	cfg := Config{
		Port:        get("PORT", DefaultPort),
		BaseURL:     get("AIHUBMIX_BASE_URL", DefaultBaseURL),
		APIKeyParam: get("AIHUBMIX_API_KEY_PARAM", ""),
		LogLevel:    get("LOG_LEVEL", "info"),
		Lambda:      get("AWS_LAMBDA_FUNCTION_NAME", "") != "",
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", cfg.Port)
	}
	return cfg, nil
}
