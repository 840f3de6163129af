package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	CatalogURL  string
	SearchQuery string

	TargetCount     int
	StagnationLimit int
	MaxReveals      int
	SettleDelayMs   int

	StorageBackend string // "sqlite" or "postgres"
	SQLitePath     string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	CSVOutputPath string
	ChromeBin     string
	Headless      bool
	Debug         bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		CatalogURL:  getEnv("CATALOG_URL", "https://market.yandex.ru/"),
		SearchQuery: getEnv("SEARCH_QUERY", "sneakers men"),

		TargetCount:     getEnvInt("TARGET_COUNT", 1000),
		StagnationLimit: getEnvInt("STAGNATION_LIMIT", 3),
		MaxReveals:      getEnvInt("MAX_REVEALS", 80),
		SettleDelayMs:   getEnvInt("SETTLE_DELAY_MS", 1000),

		StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "./products.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "market_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/products.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		Headless:      getEnvBool("HEADLESS", true),
		Debug:         getEnvBool("DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
