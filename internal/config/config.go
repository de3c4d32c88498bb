package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
// The batch binary and the query server share one config; each reads the
// fields it needs.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Batch pipeline settings.
	RadiusKm     float64
	BatchWorkers int // 0 means one worker per CPU
	ClaimsCSV    string
	GaugesJSON   string

	// Summary store (Postgres).
	PostgresDSN string

	// Optional summary publishing to Kafka after a batch run.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaSummaryTopic string

	// Optional Redis cache for interactive query results.
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QueryCacheTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset and validating cross-field constraints.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDurationEnv("QUERY_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	radiusKm, err := parseFloatEnv("RADIUS_KM", 50)
	if err != nil {
		return nil, err
	}
	workers, err := parseIntEnv("BATCH_WORKERS", 0)
	if err != nil {
		return nil, err
	}
	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	kafkaBrokers := splitList(envOrDefault("KAFKA_BROKERS", ""))
	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	redisEnabled := redisAddr != ""
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		redisEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RadiusKm:     radiusKm,
		BatchWorkers: workers,
		ClaimsCSV:    envOrDefault("CLAIMS_CSV", "data/goodClaims.csv"),
		GaugesJSON:   envOrDefault("GAUGES_JSON", "data/gauge_footprints.json"),

		PostgresDSN: postgresDSN(),

		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      kafkaBrokers,
		KafkaSummaryTopic: envOrDefault("KAFKA_SUMMARY_TOPIC", "gauge-claim-summaries"),

		RedisEnabled:  redisEnabled,
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASS"),
		RedisDB:       redisDB,
		QueryCacheTTL: cacheTTL,
	}

	if cfg.RadiusKm <= 0 {
		return nil, errors.New("RADIUS_KM must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ENABLED is true but REDIS_ADDR is not set")
	}

	return cfg, nil
}

// postgresDSN prefers a full POSTGRES_DSN and otherwise assembles one from
// the individual PG_* pieces.
func postgresDSN() string {
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		return dsn
	}

	host := envOrDefault("PG_HOST", "localhost")
	port := envOrDefault("PG_PORT", "5432")
	user := envOrDefault("PG_USER", "postgres")
	pass := os.Getenv("PG_PASSWORD")
	db := envOrDefault("PG_DB", "floodclaims")
	ssl := envOrDefault("PG_SSLMODE", "disable")

	dsn := "postgres://" + user
	if pass != "" {
		dsn += ":" + pass
	}
	return dsn + "@" + host + ":" + port + "/" + db + "?sslmode=" + ssl
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}
