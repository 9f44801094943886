package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration, resolved once at startup.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	// Remote records storage. Both must be present for the remote backend;
	// partial configuration forces the local file backend.
	DatabaseURL  string
	RecordsTable string

	// Blob storage for uploaded files.
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string

	// Generation client.
	GeminiAPIKey   string
	GeminiModel    string
	GenMinInterval time.Duration
	GenMaxAttempts int
	GenBaseDelay   time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults. A local .env file is loaded best-effort for dev convenience.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RecordsTable:    strings.TrimSpace(os.Getenv("RECORDS_TABLE")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		GeminiAPIKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:     getEnv("GEMINI_MODEL", ""),
		GenMinInterval:  getEnvDuration("GEN_MIN_INTERVAL", 0),
		GenMaxAttempts:  getEnvInt("GEN_MAX_ATTEMPTS", 0),
		GenBaseDelay:    getEnvDuration("GEN_BASE_DELAY", 0),
	}
}

// RemoteStorageConfigured reports whether every setting the remote records
// backend needs is present. Partial configuration counts as absent.
func (c Config) RemoteStorageConfigured() bool {
	return strings.TrimSpace(c.DatabaseURL) != "" && c.RecordsTable != ""
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
