package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "zero", so a partial file only overrides
// what it names.
type JsonConfig struct {
	UsersFile      *string         `json:"users_file"`
	LogLevel       *string         `json:"log_level"`
	LogFile        *string         `json:"log_file"`
	RecoveryTTL    *timex.Duration `json:"recovery_ttl"`
	RecoverySecret *string         `json:"recovery_secret"`
	HashMemoryKiB  *uint32         `json:"hash_memory_kib"`
	HashTime       *uint32         `json:"hash_time"`
	HashThreads    *uint8          `json:"hash_threads"`
}

// parseJson overlays cfg with values from the JSON file named by -c or
// -config. Without either flag nothing is loaded.
func parseJson(cfg *Config) error {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.UsersFile != nil {
		cfg.UsersFile = *jc.UsersFile
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFile != nil {
		cfg.LogFile = *jc.LogFile
	}
	if jc.RecoveryTTL != nil {
		cfg.RecoveryTTL = jc.RecoveryTTL.Duration
	}
	if jc.RecoverySecret != nil {
		cfg.RecoverySecret = *jc.RecoverySecret
	}
	if jc.HashMemoryKiB != nil {
		cfg.Hash.MemoryKiB = *jc.HashMemoryKiB
	}
	if jc.HashTime != nil {
		cfg.Hash.Time = *jc.HashTime
	}
	if jc.HashThreads != nil {
		cfg.Hash.Threads = *jc.HashThreads
	}
}
