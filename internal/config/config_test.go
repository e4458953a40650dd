package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %s, want %s", cfg.Port, DefaultPort)
	}
	if cfg.CommitmentTTL != 600*time.Second {
		t.Errorf("CommitmentTTL = %v, want 600s", cfg.CommitmentTTL)
	}
	if cfg.SweepInterval != 300*time.Second {
		t.Errorf("SweepInterval = %v, want 300s", cfg.SweepInterval)
	}
	if cfg.MaxBetsPerHour != 50 {
		t.Errorf("MaxBetsPerHour = %d, want 50", cfg.MaxBetsPerHour)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COMMITMENT_TTL_SECONDS", "120")
	t.Setenv("MAX_BETS_PER_HOUR", "5")
	t.Setenv("MIN_BET_AMOUNT", "0.01")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CommitmentTTL != 120*time.Second {
		t.Errorf("CommitmentTTL = %v, want 120s", cfg.CommitmentTTL)
	}
	if cfg.MaxBetsPerHour != 5 {
		t.Errorf("MaxBetsPerHour = %d, want 5", cfg.MaxBetsPerHour)
	}
	if cfg.MinBetAmount != 0.01 {
		t.Errorf("MinBetAmount = %f, want 0.01", cfg.MinBetAmount)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			CommitmentTTL:  600 * time.Second,
			SweepInterval:  300 * time.Second,
			MinBetAmount:   0.001,
			MaxBetAmount:   10,
			MaxBetsPerHour: 50,
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.MaxBetAmount = 0.0001
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for MAX_BET_AMOUNT < MIN_BET_AMOUNT")
	}

	cfg = base()
	cfg.ContractAddress = "0x1234"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for CONTRACT_ADDRESS without RPC_URL")
	}
}
