package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CONTENTMESH_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CONTENTMESH_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	return intEnv("SERVER_PORT", 8080)
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	return stringEnv("MIGRATIONS_PATH", "migrations")
}

// MemoryBackend selects the document store behind the memory source.
// Defaults to "postgres" when DATABASE_URL is set, "keyword" otherwise.
// Valid values: postgres, keyword
func MemoryBackend() string {
	if b := os.Getenv("MEMORY_BACKEND"); b != "" {
		return b
	}
	if DatabaseURL() != "" {
		return "postgres"
	}
	return "keyword"
}

// DocumentRetention is how long memory documents are kept. Zero disables
// the expirer.
func DocumentRetention() time.Duration {
	days := intEnv("DOCUMENT_RETENTION_DAYS", 0)
	if days < 0 {
		return 0
	}
	return time.Duration(days) * 24 * time.Hour
}

// WatchDir is a directory whose text files are mirrored into memory.
// Empty disables the watcher.
func WatchDir() string {
	return os.Getenv("WATCH_DIR")
}

// WatchExtensions lists the file extensions WatchDir ingests.
// Defaults to md,txt.
func WatchExtensions() []string {
	var exts []string
	for _, e := range strings.Split(stringEnv("WATCH_EXTENSIONS", "md,txt"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// GeminiAPIKey falls back to GOOGLE_API_KEY.
func GeminiAPIKey() string {
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("GOOGLE_API_KEY")
}

func GeminiModel() string {
	return stringEnv("GEMINI_MODEL", "gemini-2.0-flash")
}

// LLMProvider returns the provider used for contradiction checks.
// Defaults to "gemini" if not set.
// Valid values: gemini, openai, anthropic, mock
func LLMProvider() string {
	return stringEnv("LLM_PROVIDER", "gemini")
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "openai":
		return OpenAIAPIKey()
	case "anthropic":
		return AnthropicAPIKey()
	case "mock":
		return ""
	default:
		return GeminiAPIKey()
	}
}

// LLMModel overrides the provider's default model. For gemini it falls back
// to GEMINI_MODEL.
func LLMModel() string {
	if m := os.Getenv("LLM_MODEL"); m != "" {
		return m
	}
	if LLMProvider() == "gemini" {
		return GeminiModel()
	}
	return ""
}

// SearchProvider returns the web search backend.
// Defaults to "gemini" when a Gemini key exists, "mock" otherwise.
// Valid values: gemini, mock
func SearchProvider() string {
	if p := os.Getenv("SEARCH_PROVIDER"); p != "" {
		return p
	}
	if GeminiAPIKey() != "" {
		return "gemini"
	}
	return "mock"
}

// ContradictionDetector returns "none" or "llm". Defaults to "none".
func ContradictionDetector() string {
	return stringEnv("CONTRADICTION_DETECTOR", "none")
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai" when an OpenAI key exists, "mock" otherwise.
// Valid values: openai, mock
func EmbeddingProvider() string {
	if p := os.Getenv("EMBEDDING_PROVIDER"); p != "" {
		return p
	}
	if OpenAIAPIKey() != "" {
		return "openai"
	}
	return "mock"
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// EmbeddingBaseURL points the OpenAI embedding client at a compatible
// endpoint. Empty means the public API.
func EmbeddingBaseURL() string {
	return os.Getenv("EMBEDDING_BASE_URL")
}

func DefaultRoutingStrategy() string {
	return stringEnv("DEFAULT_ROUTING_STRATEGY", "memory_first")
}

func DecisionLogCapacity() int {
	return positiveIntEnv("DECISION_LOG_CAPACITY", 1000)
}

// MemoryHitThreshold is the mean relevance at which memory answers alone
// under memory_first. Defaults to 0.7.
func MemoryHitThreshold() float64 {
	v, err := strconv.ParseFloat(os.Getenv("MEMORY_HIT_THRESHOLD"), 64)
	if err != nil || v < 0 || v > 1 {
		return 0.7
	}
	return v
}

func SourceQueryTimeout() time.Duration {
	return durationEnv("SOURCE_QUERY_TIMEOUT", 15*time.Second)
}

func SourceMaxRetries() int {
	n, err := strconv.Atoi(os.Getenv("SOURCE_MAX_RETRIES"))
	if err != nil || n < 0 {
		return 2
	}
	return n
}

func QueryConcurrency() int {
	return positiveIntEnv("QUERY_CONCURRENCY", 4)
}

func QueryDefaultLimit() int {
	return positiveIntEnv("QUERY_DEFAULT_LIMIT", 10)
}

func MemorySourcePriority() int {
	return intEnv("MEMORY_SOURCE_PRIORITY", 10)
}

func WebSourcePriority() int {
	return intEnv("WEB_SOURCE_PRIORITY", 5)
}

// RedisURL enables the shared result cache when set.
func RedisURL() string {
	return os.Getenv("REDIS_URL")
}

func CacheTTL() time.Duration {
	return durationEnv("CACHE_TTL", time.Hour)
}

// ScoringProfilePath is the path of an optional YAML file overriding scorer
// weights and source reliability.
func ScoringProfilePath() string {
	return os.Getenv("SCORING_PROFILE")
}

// APIKey, when set, is required as a bearer token on /v1 routes.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	return positiveIntEnv("RATE_LIMIT_BURST", 20)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return stringEnv("LOG_LEVEL", "info")
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func positiveIntEnv(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// durationEnv accepts Go duration strings ("90s") or plain seconds ("90").
func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
