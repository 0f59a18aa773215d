package config

import (
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
)

// Config holds runtime settings for the accountkeeper CLI.
//
// Fields:
//   - UsersFile: path of the JSON users file.
//   - LogLevel: debug, info, warn or error.
//   - LogFile: optional rotating log file, in addition to stderr.
//   - RecoveryTTL: lifetime of a recovery challenge and of a reset token.
//   - RecoverySecret: HMAC key for reset tokens; empty means a random key
//     per process.
//   - Hash: argon2id parameters for new password hashes.
type Config struct {
	UsersFile      string
	LogLevel       string
	LogFile        string
	RecoveryTTL    time.Duration
	RecoverySecret string
	Hash           cryptox.Params
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.UsersFile = "users.json"
	c.LogLevel = "info"
	c.LogFile = ""
	c.RecoveryTTL = 10 * time.Minute
	c.RecoverySecret = ""
	c.Hash = cryptox.DefaultParams()
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
