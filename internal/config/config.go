package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	StorageDSN string
	StorageKey string

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	ImageBucketURL string

	KafkaBrokers []string
	KafkaTopic   string
}

const (
	DefaultStorageKey = "farmconnect-storage"
	DefaultStorageDSN = "sqlite://farmconnect.db"
)

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "farmconnect"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		StorageDSN: EnvDefault("STORAGE_DSN", DefaultStorageDSN),
		StorageKey: EnvDefault("STORAGE_KEY", DefaultStorageKey),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		GeminiModel:   EnvDefault("GEMINI_MODEL", "gemini-1.5-flash"),

		ImageBucketURL: EnvDefault("IMAGE_BUCKET_URL", "file:///tmp/farmconnect/images?create_dir=true"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "farmconnect_events"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
