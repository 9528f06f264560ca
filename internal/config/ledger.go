package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	LedgerModeLocal  = "local"
	LedgerModeRemote = "remote"

	SlotBackendFile  = "file"
	SlotBackendRedis = "redis"
)

var ErrInvalidLedgerConfig = errors.New("invalid ledger config")

type LedgerConfig struct {
	Mode          string
	SlotBackend   string
	SlotDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

var (
	ledgerConfig *LedgerConfig
	ledgerOnce   sync.Once
)

func LoadLedgerConfig() *LedgerConfig {
	ledgerOnce.Do(func() {
		ledgerConfig = &LedgerConfig{
			Mode:          strings.ToLower(getEnv("LEDGER_MODE", LedgerModeLocal)),
			SlotBackend:   strings.ToLower(getEnv("SLOT_BACKEND", SlotBackendFile)),
			SlotDir:       getEnv("SLOT_DIR", "data/slots"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			RedisPrefix:   getEnv("REDIS_PREFIX", "notice-radar:"),
		}
	})
	return ledgerConfig
}

func (c *LedgerConfig) Remote() bool {
	return c.Mode == LedgerModeRemote
}

// Validate rejects modes and backends the server does not know, so a typo
// never silently falls back to local exclusions.
func (c *LedgerConfig) Validate() error {
	switch c.Mode {
	case LedgerModeLocal, LedgerModeRemote:
	default:
		return fmt.Errorf("%w: unknown LEDGER_MODE %q", ErrInvalidLedgerConfig, c.Mode)
	}
	switch c.SlotBackend {
	case SlotBackendFile, SlotBackendRedis:
	default:
		return fmt.Errorf("%w: unknown SLOT_BACKEND %q", ErrInvalidLedgerConfig, c.SlotBackend)
	}
	return nil
}
