// Package config holds scraper configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPromptTemplate is the language-model generation prompt used when the
// operator has not supplied one. Placeholders are substituted per listing.
const DefaultPromptTemplate = "Based on the business {businessName} which is a " +
	"{businessType} located in {location}, what would be their most likely " +
	"business email address?"

// Config holds scraper configuration.
type Config struct {
	// Session behaviour.
	Delay           time.Duration // pause between listings
	SettleDelay     time.Duration // pause for dynamic content after navigation
	SurfaceTimeout  time.Duration // max wait for the results surface
	PanelTimeout    time.Duration // max wait for a listing details panel
	AutoScroll      bool
	MaxHarvestTries int

	// Remote fallback.
	RemoteFallback  bool   // enable language-model states
	APIKey          string // bearer credential for the model endpoint
	LLMEndpoint     string
	LLMModel        string
	PromptTemplate  string
	RelayEndpoints  []string // content-relay URL templates, %s = escaped target
	FetchTimeout    time.Duration
	MaxContactPages int

	// Output.
	OutputFile   string
	OutputFormat string // csv, json, dual, or postgres
	PostgresDSN  string
	StateFile    string
	MetricsAddr  string

	UserAgent string
	Verbose   bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Delay:           1500 * time.Millisecond,
		SettleDelay:     1 * time.Second,
		SurfaceTimeout:  15 * time.Second,
		PanelTimeout:    3 * time.Second,
		AutoScroll:      true,
		MaxHarvestTries: 3,

		RemoteFallback: true,
		LLMEndpoint:    "https://openrouter.ai/api/v1/chat/completions",
		LLMModel:       "meta-llama/llama-3.1-8b-instruct:free",
		PromptTemplate: DefaultPromptTemplate,
		RelayEndpoints: []string{
			"https://api.allorigins.win/raw?url=%s",
			"https://cors-anywhere.herokuapp.com/%s",
			"https://thingproxy.freeboard.io/fetch/%s",
		},
		FetchTimeout:    10 * time.Second,
		MaxContactPages: 3,

		OutputFile:   "output/listings.csv",
		OutputFormat: "csv",
		StateFile:    "output/state.json",
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// APIKeyConfigured reports whether the credential looks usable. Keys shorter
// than 10 characters are treated as not configured, so the AI states
// short-circuit without a network call.
func (c *Config) APIKeyConfigured() bool {
	key := strings.TrimSpace(c.APIKey)
	return len(key) >= 10
}

// RenderPrompt substitutes the prompt-template placeholders.
func (c *Config) RenderPrompt(businessName, businessType, location string) string {
	if businessType == "" {
		businessType = "business"
	}
	if location == "" {
		location = "unknown location"
	}
	p := strings.Replace(c.PromptTemplate, "{businessName}", businessName, 1)
	p = strings.Replace(p, "{businessType}", businessType, 1)
	return strings.Replace(p, "{location}", location, 1)
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay cannot be negative")
	}
	if c.SurfaceTimeout <= 0 {
		return fmt.Errorf("surface timeout must be positive")
	}
	if c.PanelTimeout <= 0 {
		return fmt.Errorf("panel timeout must be positive")
	}
	if c.MaxHarvestTries <= 0 {
		return fmt.Errorf("max harvest tries must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.MaxContactPages < 0 {
		return fmt.Errorf("max contact pages cannot be negative")
	}
	if len(c.RelayEndpoints) == 0 {
		return fmt.Errorf("at least one relay endpoint is required")
	}
	for _, relay := range c.RelayEndpoints {
		if !strings.Contains(relay, "%s") {
			return fmt.Errorf("relay endpoint %q lacks a %%s target placeholder", relay)
		}
	}
	if c.RemoteFallback {
		parsed, err := url.Parse(c.LLMEndpoint)
		if err != nil {
			return fmt.Errorf("invalid model endpoint: %w", err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("model endpoint must include a host")
		}
		if c.LLMModel == "" {
			return fmt.Errorf("model name cannot be empty")
		}
		if c.PromptTemplate == "" {
			return fmt.Errorf("prompt template cannot be empty")
		}
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	switch c.OutputFormat {
	case "csv", "json", "dual":
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres output requires a DSN")
		}
	default:
		return fmt.Errorf("output format must be csv, json, dual, or postgres")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// LoadEnv reads a .env file when present so credentials stay out of the
// shell history. A missing file is fine.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}
}

// EnvString returns the named environment variable and whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses the named environment variable as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvBool parses the named environment variable as a boolean.
func EnvBool(key string) (bool, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, true, nil
}
