package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultSystemInstruction = "You are a professional therapist. You are expert in helping elderly people with their mental health and emotional well-being. " +
	"Keep your responses concise and supportive. Suggest them activities and remedies. " +
	"Give responses which can be suitable for text to speech."

var DefaultModelCandidates = []string{
	"gemini-2.5-flash",
	"gemini-2.5-flash-latest",
	"gemini-1.5-pro",
	"gemini-1.5-pro-latest",
}

type Config struct {
	// Server
	Port        string
	Env         string
	FrontendURL string

	// Gemini AI
	GeminiAPIKey         string
	GeminiBaseURL        string
	GeminiAPIVersion     string
	GeminiConcurrentReqs int

	// Relay
	ModelCandidates   []string
	SystemInstruction string
	AttemptTimeout    time.Duration
	RateLimitPerMin   int

	// Redis (optional usage counters)
	RedisURL string
}

// Load reads the environment, honouring a .env file when one exists.
// The API key has no default: a missing key is an error.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	apiKey, err := mustGetEnv("GOOGLE_API_KEY")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", getEnvOrDefault("PROXY_PORT", "3001")),
		Env:                  getEnvOrDefault("ENV", "development"),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "*"),
		GeminiAPIKey:         apiKey,
		GeminiBaseURL:        getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion:     getEnvOrDefault("GEMINI_API_VERSION", "v1beta"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		ModelCandidates:      getEnvAsListOrDefault("MODEL_CANDIDATES", DefaultModelCandidates),
		SystemInstruction:    getEnvOrDefault("SYSTEM_INSTRUCTION", DefaultSystemInstruction),
		AttemptTimeout:       time.Duration(getEnvAsIntOrDefault("ATTEMPT_TIMEOUT_SECONDS", 20)) * time.Second,
		RateLimitPerMin:      getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 30),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return errors.New("gemini API key must not be empty")
	}
	if len(c.ModelCandidates) == 0 {
		return errors.New("at least one model candidate is required")
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("attempt timeout must be positive, got %s", c.AttemptTimeout)
	}
	if c.GeminiConcurrentReqs <= 0 {
		return fmt.Errorf("concurrent requests must be positive, got %d", c.GeminiConcurrentReqs)
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimitPerMin)
	}
	return nil
}

// IsProduction reports whether the service runs with production logging.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// CORSOrigins splits FrontendURL into the allowed origin list.
func (c *Config) CORSOrigins() []string {
	return splitList(c.FrontendURL)
}

func mustGetEnv(key string) (string, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return val, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	items := splitList(os.Getenv(key))
	if len(items) == 0 {
		return append([]string(nil), defaultVal...)
	}
	return items
}

// splitList splits a comma separated value, dropping blanks and repeats.
func splitList(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
