package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
)

const envPrefix = "ACCOUNTS_"

// parseEnv overlays cfg with ACCOUNTS_* variables. A dotenv file given with
// -e or -env must exist; otherwise ./.env is read if present. Variables
// already set in the process environment win over the file.
func parseEnv(cfg *Config) error {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v, ok := lookup("USERS_FILE"); ok {
		cfg.UsersFile = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := lookup("RECOVERY_SECRET"); ok {
		cfg.RecoverySecret = v
	}
	if v, ok := lookup("RECOVERY_TTL"); ok {
		ttl, err := parseTTL(v)
		if err != nil {
			return fmt.Errorf("%sRECOVERY_TTL: %w", envPrefix, err)
		}
		cfg.RecoveryTTL = ttl
	}
	return nil
}

func lookup(name string) (string, bool) {
	return os.LookupEnv(envPrefix + name)
}

// parseTTL accepts a Go duration ("15m") or a bare number of seconds.
func parseTTL(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
