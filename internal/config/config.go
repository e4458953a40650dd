// Package config handles application configuration from environment variables
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
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Commitment engine
	CommitmentTTL     time.Duration // max commitment age before the sweeper removes it
	SweepInterval     time.Duration // how often the expiry sweeper runs
	AttestationMaxAge time.Duration // verification freshness window

	// Bet limits
	MinBetAmount    float64
	MaxBetAmount    float64
	MaxBetsPerHour  int
	SessionTTL      time.Duration
	SuspendScore    float64 // risk score above which bet preparation is refused

	// Blockchain settings (optional; offline stub transactions when unset)
	RPCURL          string
	ChainID         int64
	ContractAddress string

	// Observability
	OTLPEndpoint string
}

// Defaults mirror the protocol constants.
const (
	DefaultPort              = "8000"
	DefaultEnv               = "development"
	DefaultLogLevel          = "info"
	DefaultCommitmentTTL     = 600 * time.Second
	DefaultSweepInterval     = 300 * time.Second
	DefaultAttestationMaxAge = 600 * time.Second
	DefaultMinBetAmount      = 0.001
	DefaultMaxBetAmount      = 10.0
	DefaultMaxBetsPerHour    = 50
	DefaultSessionTTL        = 24 * time.Hour
	DefaultSuspendScore      = 0.8
	DefaultChainID           = 31337 // local devnet
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", DefaultPort),
		Env:               getEnv("ENV", DefaultEnv),
		LogLevel:          getEnv("LOG_LEVEL", DefaultLogLevel),
		CommitmentTTL:     getEnvSeconds("COMMITMENT_TTL_SECONDS", DefaultCommitmentTTL),
		SweepInterval:     getEnvSeconds("SWEEP_INTERVAL_SECONDS", DefaultSweepInterval),
		AttestationMaxAge: getEnvSeconds("ATTESTATION_MAX_AGE_SECONDS", DefaultAttestationMaxAge),
		MinBetAmount:      getEnvFloat("MIN_BET_AMOUNT", DefaultMinBetAmount),
		MaxBetAmount:      getEnvFloat("MAX_BET_AMOUNT", DefaultMaxBetAmount),
		MaxBetsPerHour:    int(getEnvInt64("MAX_BETS_PER_HOUR", DefaultMaxBetsPerHour)),
		SessionTTL:        getEnvSeconds("SESSION_TTL_SECONDS", DefaultSessionTTL),
		SuspendScore:      getEnvFloat("RISK_SUSPEND_THRESHOLD", DefaultSuspendScore),
		RPCURL:            os.Getenv("RPC_URL"), // Optional, offline stub txns if unset
		ChainID:           getEnvInt64("CHAIN_ID", DefaultChainID),
		ContractAddress:   os.Getenv("CONTRACT_ADDRESS"),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	if c.CommitmentTTL <= 0 {
		return fmt.Errorf("COMMITMENT_TTL_SECONDS must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL_SECONDS must be positive")
	}
	if c.MinBetAmount <= 0 {
		return fmt.Errorf("MIN_BET_AMOUNT must be positive")
	}
	if c.MaxBetAmount < c.MinBetAmount {
		return fmt.Errorf("MAX_BET_AMOUNT must be >= MIN_BET_AMOUNT")
	}
	if c.MaxBetsPerHour <= 0 {
		return fmt.Errorf("MAX_BETS_PER_HOUR must be positive")
	}
	if c.ContractAddress != "" && c.RPCURL == "" {
		return fmt.Errorf("CONTRACT_ADDRESS requires RPC_URL")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil && i > 0 {
			return time.Duration(i) * time.Second
		}
	}
	return defaultValue
}
