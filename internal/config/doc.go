// Package config loads runtime configuration for the accountkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed ACCOUNTS_, optionally read from a
//     dotenv file (-e/-env, or ./.env when present).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-f string   users file (default "users.json")
//	-v string   log level (default "info")
//	-o string   log file, rotated; stderr only when empty
//	-t int      recovery lifetime in seconds (default 600)
//
// # Environment
//
//	ACCOUNTS_USERS_FILE, ACCOUNTS_LOG_LEVEL, ACCOUNTS_LOG_FILE,
//	ACCOUNTS_RECOVERY_TTL ("15m" or seconds), ACCOUNTS_RECOVERY_SECRET
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10m" or integer
// nanoseconds:
//
//	{
//	  "users_file": "data/users.json",
//	  "log_level": "debug",
//	  "log_file": "logs/accounts.log",
//	  "recovery_ttl": "10m",
//	  "recovery_secret": "change-me",
//	  "hash_memory_kib": 65536,
//	  "hash_time": 1,
//	  "hash_threads": 4
//	}
package config
