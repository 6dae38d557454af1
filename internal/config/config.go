package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Logging    LoggingConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Grid       GridConfig
	Game       GameConfig
	FreeSpins  FreeSpinsConfig
	Multiplier MultiplierConfig
	Sync       SyncConfig
	Storage    StorageConfig
	Integrity  IntegrityConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Env  string
	Addr string
	Name string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level                    string
	Format                   string
	SQLThresholdMilliSeconds int
	SQLParameterizedQueries  bool
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	SpinLimit    int
	GeneralLimit int
}

// GridConfig holds the reel grid dimensions (spec.md §6.5).
type GridConfig struct {
	Cols int
	Rows int
}

// GameConfig holds the core math-model settings (spec.md §6.5).
type GameConfig struct {
	MinMatchCluster   int
	MinMatchScatter   int
	MaxWinMultiplier  int
	MinBet            float64
	MaxBet            float64
	ScatterChanceBase float64
	ScatterChanceFS   float64
}

// FreeSpinsConfig holds free-spins award/retrigger/buy settings.
type FreeSpinsConfig struct {
	ScatterAward int
	Retrigger    int
	BuyCostMult  float64
	BuySpins     int
}

// MultiplierConfig holds random-multiplier trigger settings.
type MultiplierConfig struct {
	TriggerChance   float64
	MinWin          float64
	FSCascadeChance float64
}

// SyncConfig holds the cascade synchronizer's timing settings.
type SyncConfig struct {
	StepTimeoutMs       int
	MaxRecoveryAttempts int
	ToleranceMs         int
}

// StorageConfig holds S3/MinIO/GCS archive settings for sealed spin results.
type StorageConfig struct {
	// Provider can be "minio" or "gcs"
	Provider        string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
}

// IntegrityConfig holds the encryption settings for sealed RNG seeds.
type IntegrityConfig struct {
	// EncryptionKey is the 32-byte key for AES-256-GCM encryption of RNG
	// seeds stored alongside each spin's validation hash.
	EncryptionKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Addr: getEnv("APP_ADDR", ":8080"),
			Name: getEnv("APP_NAME", "CascadeSlots"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "cascadeslots"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Logging: LoggingConfig{
			Level:                    getEnv("LOG_LEVEL", "debug"),
			Format:                   getEnv("LOG_FORMAT", "json"),
			SQLThresholdMilliSeconds: getEnvAsInt("LOG_SQL_THRESHOLD_MILLI_SECONDS", 200),
			SQLParameterizedQueries:  getEnvAsBool("LOG_SQL_PARAMETERIZED_QUERIES", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,X-Game-ID"),
		},
		RateLimit: RateLimitConfig{
			SpinLimit:    getEnvAsInt("RATE_LIMIT_SPIN", 10),
			GeneralLimit: getEnvAsInt("RATE_LIMIT_GENERAL", 100),
		},
		Grid: GridConfig{
			Cols: getEnvAsInt("GRID_COLS", 6),
			Rows: getEnvAsInt("GRID_ROWS", 5),
		},
		Game: GameConfig{
			MinMatchCluster:   getEnvAsInt("MIN_MATCH_CLUSTER", 8),
			MinMatchScatter:   getEnvAsInt("MIN_MATCH_SCATTER", 4),
			MaxWinMultiplier:  getEnvAsInt("MAX_WIN_MULTIPLIER", 5000),
			MinBet:            getEnvAsFloat("MIN_BET", 0.40),
			MaxBet:            getEnvAsFloat("MAX_BET", 2000.00),
			ScatterChanceBase: getEnvAsFloat("SCATTER_CHANCE_BASE", 0.035),
			ScatterChanceFS:   getEnvAsFloat("SCATTER_CHANCE_FS", 0.025),
		},
		FreeSpins: FreeSpinsConfig{
			ScatterAward: getEnvAsInt("FREE_SPINS_SCATTER_AWARD", 15),
			Retrigger:    getEnvAsInt("FREE_SPINS_RETRIGGER", 5),
			BuyCostMult:  getEnvAsFloat("FREE_SPINS_BUY_COST", 100),
			BuySpins:     getEnvAsInt("FREE_SPINS_BUY_SPINS", 15),
		},
		Multiplier: MultiplierConfig{
			TriggerChance:   getEnvAsFloat("MULTIPLIER_TRIGGER_CHANCE", 0.40),
			MinWin:          getEnvAsFloat("MULTIPLIER_MIN_WIN", 0.01),
			FSCascadeChance: getEnvAsFloat("MULTIPLIER_FS_CASCADE_CHANCE", 0.35),
		},
		Sync: SyncConfig{
			StepTimeoutMs:       getEnvAsInt("SYNC_STEP_TIMEOUT_MS", 5000),
			MaxRecoveryAttempts: getEnvAsInt("SYNC_MAX_RECOVERY_ATTEMPTS", 3),
			ToleranceMs:         getEnvAsInt("SYNC_TOLERANCE_MS", 1000),
		},
		Storage: StorageConfig{
			Provider:        getEnv("STORAGE_PROVIDER", "minio"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "spin-archive"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", "http://localhost:9000"),
		},
		Integrity: IntegrityConfig{
			// Default key for development only - MUST be overridden in production
			EncryptionKey: getEnv("INTEGRITY_ENCRYPTION_KEY", "cascadeslots-dev-key-32bytes!!!!"),
		},
	}

	if cfg.Database.Password == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("DB_PASSWORD must be set in production")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
