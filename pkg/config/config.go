package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"probook/pkg/client"
	"probook/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	ReservationStore string
	PostgresDSN      string
	PostgresMaxConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaEnabled bool

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SlotStep            time.Duration
	DefaultTimeZone     string
	CancellationNotice  time.Duration
	DefaultScheduleFile string
	ScheduleTemplate    *ScheduleTemplate

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		ReservationStore: strings.ToLower(getEnvStr(EnvReservationStore, DefaultReservationStore)),
		PostgresDSN:      getEnvStr(EnvPostgresDSN, ""),
		PostgresMaxConns: getEnvNum(EnvPostgresMaxConns, DefaultPostgresMaxConns),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, 0),

		KafkaEnabled: getEnvBool(EnvKafkaEnabled, false),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SlotStep:            getEnvDuration(EnvSlotStep, DefaultSlotStep),
		DefaultTimeZone:     getEnvStr(EnvDefaultTimeZone, DefaultTimeZone),
		CancellationNotice:  getEnvDuration(EnvCancellationNotice, DefaultCancellationNotice),
		DefaultScheduleFile: getEnvStr(EnvDefaultScheduleFile, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	cfg.ScheduleTemplate = BuiltinScheduleTemplate()
	if cfg.DefaultScheduleFile != "" {
		tpl, err := LoadScheduleTemplate(cfg.DefaultScheduleFile)
		if err != nil {
			cfg.Log.Fatal("Failed to load default schedule template", "file", cfg.DefaultScheduleFile, "error", err)
		}
		cfg.ScheduleTemplate = tpl
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetPostgres() {
	cfg.Client.SetPostgres(cfg.Log, cfg.PostgresDSN, int32(cfg.PostgresMaxConns), cfg.MongoConnTimeout)
}

// SetRedis connects only when REDIS_ADDR is configured.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	switch cfg.ReservationStore {
	case StoreMongo:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			errors = append(errors, "PostgresDSN is required when ReservationStore is postgres")
		}
		if cfg.PostgresMaxConns <= 0 {
			errors = append(errors, fmt.Sprintf("PostgresMaxConns must be positive, got: %d", cfg.PostgresMaxConns))
		}
	default:
		errors = append(errors, fmt.Sprintf("ReservationStore must be %q or %q, got: %s", StoreMongo, StorePostgres, cfg.ReservationStore))
	}

	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.SlotStep < time.Minute || cfg.SlotStep%time.Minute != 0 {
		errors = append(errors, fmt.Sprintf("SlotStep must be a whole number of minutes, got: %s", cfg.SlotStep))
	}
	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone must be an IANA zone, got: %s", cfg.DefaultTimeZone))
	}
	if cfg.CancellationNotice < 0 {
		errors = append(errors, fmt.Sprintf("CancellationNotice cannot be negative, got: %s", cfg.CancellationNotice))
	}
	if cfg.ScheduleTemplate == nil {
		errors = append(errors, "ScheduleTemplate is not loaded")
	} else if err := cfg.ScheduleTemplate.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("ScheduleTemplate is invalid: %v", err))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"reservation_store", cfg.ReservationStore,
		"postgres_dsn", redactURI(cfg.PostgresDSN),
		"redis_addr", cfg.RedisAddr,
		"kafka_enabled", cfg.KafkaEnabled,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"slot_step", cfg.SlotStep,
		"default_time_zone", cfg.DefaultTimeZone,
		"cancellation_notice", cfg.CancellationNotice,
		"default_schedule_file", cfg.DefaultScheduleFile,
	)
}

var credentialRegex = regexp.MustCompile(`([a-z+]+://)[^:/@]+:[^@]+@`)

func redactURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 20
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
