package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   users file
//	-v string   log level
//	-o string   log file
//	-t int      recovery challenge and token lifetime (in seconds)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-v", "-o", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.UsersFile, "f", cfg.UsersFile, "path to the users file")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "o", cfg.LogFile, "log file (rotated)")
	recoveryTTL := fs.Int("t", int(cfg.RecoveryTTL.Seconds()), "recovery lifetime (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RecoveryTTL = time.Duration(*recoveryTTL) * time.Second
	return nil
}
