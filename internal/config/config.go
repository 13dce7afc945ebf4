package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
	Engine    EngineConfig
	Valuation ValuationConfig
	Universe  UniverseConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration for the watchlist store
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers        []string
	ValuationTopic string
	WatchlistTopic string
	GroupID        string
}

// RedisConfig holds the optional Redis P/E cache backend configuration
type RedisConfig struct {
	Enabled bool
	Addr    string
	TTL     time.Duration
}

// EngineConfig bounds the batch orchestrator
type EngineConfig struct {
	MaxWorkers    int
	TickerTimeout time.Duration
	BatchTimeout  time.Duration
}

// ValuationConfig carries the model parameters as an explicit value so
// parallel runs can use different assumptions.
type ValuationConfig struct {
	DCF     models.DCFParameters
	Comps   models.CompsParameters
	Weights models.ValuationWeights
}

// UniverseConfig selects where the ticker list comes from
type UniverseConfig struct {
	TickerFile  string
	UseDatabase bool
}

// SchedulerConfig controls the recurring daily run
type SchedulerConfig struct {
	Enabled  bool
	CronSpec string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "valuation"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:        []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ValuationTopic: getEnv("KAFKA_VALUATION_TOPIC", "valuation-events"),
			WatchlistTopic: getEnv("KAFKA_WATCHLIST_TOPIC", "watchlist-events"),
			GroupID:        getEnv("KAFKA_GROUP_ID", "valuation-service"),
		},
		Redis: RedisConfig{
			Enabled: getEnvBool("REDIS_ENABLED", false),
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			TTL:     getEnvDuration("REDIS_PE_TTL", 24*time.Hour),
		},
		Engine: EngineConfig{
			MaxWorkers:    getEnvInt("ENGINE_MAX_WORKERS", 8),
			TickerTimeout: getEnvDuration("ENGINE_TICKER_TIMEOUT", 60*time.Second),
			BatchTimeout:  getEnvDuration("ENGINE_BATCH_TIMEOUT", 300*time.Second),
		},
		Valuation: DefaultValuationConfig(),
		Universe: UniverseConfig{
			TickerFile:  getEnv("TICKER_FILE", "data/tickers.csv"),
			UseDatabase: getEnvBool("UNIVERSE_USE_DATABASE", false),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvBool("SCHEDULER_ENABLED", true),
			CronSpec: getEnv("SCHEDULER_CRON", "0 18 * * 1-5"),
		},
	}
}

// DefaultValuationConfig returns the standard model parameters: 12%
// discount, 8% terminal growth cap, 5-year horizon, 60/40 DCF/Comps
// blend, and a 15% conservative haircut on aggregated P/E ratios.
func DefaultValuationConfig() ValuationConfig {
	return ValuationConfig{
		DCF: models.DCFParameters{
			DiscountRate:       0.12,
			TerminalGrowthRate: 0.08,
			MaxGrowthRate:      0.08,
			ProjectionYears:    5,
		},
		Comps: models.CompsParameters{
			PEConservativeFactor: 0.85,
			MinPERatio:           5.0,
			MaxPERatio:           40.0,
		},
		Weights: models.ValuationWeights{
			DCFWeight:   0.6,
			CompsWeight: 0.4,
		},
	}
}

// SectorPERatios returns the default industry P/E table used when no
// live estimate is available. Unknown sectors map to "Default".
func SectorPERatios() map[string]float64 {
	return map[string]float64{
		"Technology":             22.0,
		"Healthcare":             18.0,
		"Financial Services":     10.0,
		"Consumer Cyclical":      16.0,
		"Consumer Defensive":     20.0,
		"Energy":                 12.0,
		"Industrials":            13.0,
		"Materials":              12.0,
		"Real Estate":            14.0,
		"Utilities":              16.0,
		"Communication Services": 18.0,
		"Default":                18.0,
	}
}

// Validate checks parameter invariants. The Gordon growth terminal value
// diverges unless discount rate exceeds terminal growth, so that pair is
// rejected outright rather than clamped.
func (c *Config) Validate() error {
	v := c.Valuation
	if v.DCF.DiscountRate <= 0 || v.DCF.DiscountRate >= 1 {
		return fmt.Errorf("discount rate must be between 0 and 1, got %v", v.DCF.DiscountRate)
	}
	if v.DCF.TerminalGrowthRate <= 0 || v.DCF.TerminalGrowthRate >= v.DCF.DiscountRate {
		return fmt.Errorf("terminal growth rate must be positive and less than the discount rate")
	}
	if v.DCF.ProjectionYears <= 0 {
		return fmt.Errorf("projection years must be positive")
	}
	if v.Comps.PEConservativeFactor <= 0 || v.Comps.PEConservativeFactor > 1 {
		return fmt.Errorf("P/E conservative factor must be in (0, 1]")
	}
	if v.Comps.MinPERatio <= 0 || v.Comps.MinPERatio >= v.Comps.MaxPERatio {
		return fmt.Errorf("invalid P/E ratio bounds [%v, %v]", v.Comps.MinPERatio, v.Comps.MaxPERatio)
	}
	if v.Weights.DCFWeight < 0 || v.Weights.CompsWeight < 0 {
		return fmt.Errorf("valuation weights cannot be negative")
	}
	total := v.Weights.DCFWeight + v.Weights.CompsWeight
	if total <= 0 {
		return fmt.Errorf("total valuation weight must be positive")
	}
	if total != 1.0 {
		c.Valuation.Weights.DCFWeight /= total
		c.Valuation.Weights.CompsWeight /= total
	}
	if c.Engine.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive")
	}
	if c.Engine.TickerTimeout <= 0 || c.Engine.BatchTimeout <= 0 {
		return fmt.Errorf("engine timeouts must be positive")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
