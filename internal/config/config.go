package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	// App is "prod" in deployed environments; anything else seeds demo data.
	App string

	// StoreBackend forces mongo, postgres, sqlite or memory; empty picks the
	// first configured one.
	StoreBackend string

	MongoURI      string
	MongoDatabase string

	PostgresDSN           string
	PostgresMigrationsDir string

	SQLitePath          string
	SQLiteMigrationsDir string

	MaxOpenConns int
	MaxIdleConns int

	CacheTTL time.Duration

	LogLevel  string
	LogFormat string

	CORSOrigins []string

	ScoreboardTZ     string
	CompetitionsFile string
}

// Lambda reports whether the process runs inside AWS Lambda.
func Lambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// LoadDotEnv reads .env and .env.local when running outside Lambda. Missing
// files are ignored.
func LoadDotEnv() {
	if Lambda() {
		return
	}
	_ = godotenv.Load(".env", ".env.local")
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),
		App:  strings.ToLower(getEnv("APP", "")),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "")),

		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "efi"),

		PostgresDSN:           getEnv("POSTGRES_DSN", ""),
		PostgresMigrationsDir: getEnv("POSTGRES_MIGRATIONS_DIR", ""),

		SQLitePath:          getEnv("DB_PATH", ""),
		SQLiteMigrationsDir: getEnv("DB_MIGRATIONS_DIR", ""),

		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		CacheTTL: getEnvDuration("CACHE_TTL", time.Hour),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "logfmt")),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),

		ScoreboardTZ:     getEnv("SCOREBOARD_TZ", "UTC"),
		CompetitionsFile: getEnv("COMPETITIONS_FILE", ""),
	}
}

func (c *Config) Prod() bool {
	return c.App == "prod"
}

// Location resolves ScoreboardTZ, falling back to UTC for unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ScoreboardTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
