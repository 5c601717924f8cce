package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	LogLevel        string

	AWSRegion          string
	DynamoEndpoint     string
	DynamoTable        string
	TimestampAttribute string
	RecordKeyAttribute string
	FetchTimeout       time.Duration

	SchemaVersion string
	SchemaFile    string
	Timezone      string

	ExportDir       string
	ObjectStoreType string
	LocalStoreDir   string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	DatabaseURL string

	ExportsPerMinute int
	ExportBurst      int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is not set; export history is kept in memory")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:                env,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AWSRegion:          getEnv("AWS_REGION", "us-west-2"),
		DynamoEndpoint:     getEnv("DYNAMODB_ENDPOINT", ""),
		DynamoTable:        getEnv("DYNAMODB_TABLE", "Resightings"),
		TimestampAttribute: getEnv("TIMESTAMP_ATTRIBUTE", "Timestamp"),
		RecordKeyAttribute: getEnv("RECORD_KEY_ATTRIBUTE", "ResightingId"),
		FetchTimeout:       getDuration("FETCH_TIMEOUT", 30*time.Second),
		SchemaVersion:      getEnv("SCHEMA_VERSION", "v1"),
		SchemaFile:         getEnv("SCHEMA_FILE", ""),
		Timezone:           getEnv("TIMEZONE", "Local"),
		ExportDir:          getEnv("EXPORT_DIR", "./exports"),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", "exports/"),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:        dbURL,
		ExportsPerMinute:   getInt("EXPORTS_PER_MINUTE", 6),
		ExportBurst:        getInt("EXPORT_BURST", 3),
	}
}

// Location resolves the configured time zone used for date bounds and timestamp cells.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return n
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
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
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
