package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ModelProvider defines the backend chat-completion service type
type ModelProvider string

const (
	ProviderNone       ModelProvider = "none"       // No remote model, fallback scorer only
	ProviderOpenRouter ModelProvider = "openrouter" // OpenRouter (default, multi-model routing)
	ProviderOpenAI     ModelProvider = "openai"     // Direct OpenAI API
	ProviderGroq       ModelProvider = "groq"       // Groq (high-speed inference)
	ProviderCustom     ModelProvider = "custom"     // Custom OpenAI-compatible endpoint
)

// providerBaseURLs maps each known provider to its OpenAI-compatible
// API root. ProviderCustom and ProviderNone have no entry: the former
// requires an explicit BaseURL, the latter never talks to a network.
var providerBaseURLs = map[ModelProvider]string{
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
	ProviderOpenAI:     "https://api.openai.com/v1",
	ProviderGroq:       "https://api.groq.com/openai/v1",
}

// DefaultModels is the ordered model fallback list (first = preferred).
// On HTTP 429/503 or a network error the client moves to the next entry.
var DefaultModels = []string{
	"anthropic/claude-3.5-sonnet",
	"openai/gpt-4-turbo",
	"google/gemini-pro",
	"anthropic/claude-3-opus",
	"openai/gpt-4",
}

// Config holds global settings for the SafeSpace analyzer
// All settings can be configured via environment variables or programmatically
type Config struct {
	// === Model Provider Configuration ===
	Provider ModelProvider // Which chat-completion service to use
	APIKey   string        // API key for the provider (env: SAFESPACE_API_KEY)
	Models   []string      // Ordered model fallback list (env: SAFESPACE_MODELS, comma-separated)
	BaseURL  string        // Custom base URL for self-hosted or custom providers

	// === Request Shaping ===
	Temperature    float64       // Sampling temperature sent with every request (default: 0.7)
	MaxTokens      int           // max_tokens sent with every request (default: 2000)
	RequestTimeout time.Duration // Per-attempt HTTP timeout (default: 30s)
	QueueDelay     time.Duration // Inter-request delay on the serialized queue (default: 500ms, floor 500ms)

	// === Optional Detection Tiers ===
	EnableSemantics bool   // Embedding-similarity tier over taxonomy examples (default: false)
	EnableLocalML   bool   // Local ONNX text classifier tier (default: false)
	EmbeddingModel  string // Embedding model for the semantic tier

	// === Taxonomy ===
	TaxonomySeedPath string // Optional YAML file extending the built-in taxonomy

	// === Alert Store ===
	RedisAddr     string        // Redis address for the alert store (empty = store disabled)
	RedisPassword string        // Redis AUTH password
	AlertTTL      time.Duration // How long alerts stay queryable (default: 7 days)
	AlertCap      int           // Max alerts returned by a listing (default: 100)
}

// NewDefaultConfig creates a Config with sensible defaults
// All settings can be overridden via environment variables
func NewDefaultConfig() *Config {
	cfg := &Config{
		Provider: detectProvider(),
		APIKey:   GetEnv("SAFESPACE_API_KEY", os.Getenv("OPENROUTER_API_KEY")),
		Models:   GetEnvSlice("SAFESPACE_MODELS", DefaultModels),
		BaseURL:  GetEnv("SAFESPACE_BASE_URL", ""),

		Temperature:    GetEnvFloat("SAFESPACE_TEMPERATURE", 0.7),
		MaxTokens:      GetEnvInt("SAFESPACE_MAX_TOKENS", 2000),
		RequestTimeout: time.Duration(GetEnvInt("SAFESPACE_REQUEST_TIMEOUT_MS", 30000)) * time.Millisecond,
		QueueDelay:     time.Duration(GetEnvInt("SAFESPACE_QUEUE_DELAY_MS", 500)) * time.Millisecond,

		EnableSemantics: GetEnvBool("SAFESPACE_ENABLE_SEMANTICS", false),
		EnableLocalML:   GetEnvBool("SAFESPACE_ENABLE_LOCAL_ML", false),
		EmbeddingModel:  GetEnv("SAFESPACE_EMBEDDING_MODEL", "qwen/qwen3-embedding-4b"),

		TaxonomySeedPath: GetEnv("SAFESPACE_TAXONOMY_SEEDS", ""),

		RedisAddr:     GetEnv("SAFESPACE_REDIS_ADDR", ""),
		RedisPassword: GetEnv("SAFESPACE_REDIS_PASSWORD", ""),
		AlertTTL:      time.Duration(GetEnvInt("SAFESPACE_ALERT_TTL_SECONDS", 7*24*3600)) * time.Second,
		AlertCap:      clampInt(GetEnvInt("SAFESPACE_ALERT_CAP", 100), 1, 10000),
	}

	// The upstream rate limit assumes at least half a second between requests.
	if cfg.QueueDelay < 500*time.Millisecond {
		cfg.QueueDelay = 500 * time.Millisecond
	}

	// SAFESPACE_BASE_URL overrides; otherwise the provider picks the endpoint.
	if cfg.BaseURL == "" {
		cfg.BaseURL = providerBaseURLs[cfg.Provider]
	}

	return cfg
}

// NewOfflineConfig creates a Config for fallback-only operation (no API calls)
// Use this for development, air-gapped environments, or privacy-first deployments
func NewOfflineConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Provider = ProviderNone
	cfg.APIKey = ""
	cfg.EnableSemantics = false
	cfg.EnableLocalML = false
	return cfg
}

// NewHighSensitivityConfig creates a Config that leans on every available tier
func NewHighSensitivityConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.EnableSemantics = true
	cfg.EnableLocalML = true
	return cfg
}

func detectProvider() ModelProvider {
	if p := os.Getenv("SAFESPACE_PROVIDER"); p != "" {
		return ModelProvider(p)
	}
	if os.Getenv("SAFESPACE_API_KEY") != "" || os.Getenv("OPENROUTER_API_KEY") != "" {
		return ProviderOpenRouter
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return ProviderOpenAI
	}
	if os.Getenv("GROQ_API_KEY") != "" {
		return ProviderGroq
	}
	return ProviderNone
}

// clampInt ensures a value is within bounds
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Validate checks that the configuration is internally consistent.
// A missing API key is not an error: the analyzer degrades to the
// fallback scorer, which is documented behavior.
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("model list is empty; set SAFESPACE_MODELS or use DefaultModels")
	}
	if c.Provider != ProviderNone && c.APIKey == "" {
		log.Printf("[STARTUP] Warning: no API key configured - remote model tier disabled, keyword fallback only")
	}
	if c.Provider != ProviderNone && c.APIKey != "" && c.BaseURL == "" {
		return fmt.Errorf("provider %q has no base URL; set SAFESPACE_BASE_URL", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before serving.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}

// Helper functions for environment variable parsing
// These are exported for use by other packages (e.g., pkg/analyzer)

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvSlice returns a comma-separated list from an environment variable or a default value.
func GetEnvSlice(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
