package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// cmdline mixes every flag the CLI understands.
var cmdline = []string{
	"-c", "accounts.json",
	"-f", "users.json",
	"-v=debug",
	"-e", "prod.env",
	"-o", "/var/log/accounts.log",
	"-t=15m",
}

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"accountkeeper"}, args...)
}

func TestFilterArgs_SplitsSharedCommandLine(t *testing.T) {
	assert.Equal(t,
		[]string{"-f", "users.json", "-v=debug", "-o", "/var/log/accounts.log", "-t=15m"},
		FilterArgs(cmdline, []string{"-f", "-v", "-o", "-t"}))

	assert.Equal(t, []string{"-c", "accounts.json"}, FilterArgs(cmdline, []string{"-c", "-config"}))
	assert.Equal(t, []string{"-e", "prod.env"}, FilterArgs(cmdline, []string{"-e", "-env"}))
}

func TestFilterArgs_ValueStartingWithDashIsNotConsumed(t *testing.T) {
	got := FilterArgs([]string{"-f", "-v", "info"}, []string{"-f", "-v"})
	assert.Equal(t, []string{"-f", "-v", "info"}, got)

	got = FilterArgs([]string{"-o", "-t=1h"}, []string{"-o"})
	assert.Equal(t, []string{"-o"}, got)
}

func TestFilterArgs_EqualsFormKeepsValueVerbatim(t *testing.T) {
	got := FilterArgs([]string{"-o=-weird.log", "-v", "warn"}, []string{"-o"})
	assert.Equal(t, []string{"-o=-weird.log"}, got)
}

func TestFilterArgs_Empty(t *testing.T) {
	assert.Empty(t, FilterArgs(nil, []string{"-f"}))
	assert.Empty(t, FilterArgs([]string{"users.json", "-x"}, []string{"-f"}))
	assert.Empty(t, FilterArgs(cmdline, nil))
}

func TestFilterArgs_RepeatedFlagKeepsEveryOccurrence(t *testing.T) {
	got := FilterArgs([]string{"-f", "a.json", "-v", "info", "-f=b.json"}, []string{"-f"})
	assert.Equal(t, []string{"-f", "a.json", "-f=b.json"}, got)
}

func TestConfigFileFlag(t *testing.T) {
	setArgs(t, cmdline...)
	assert.Equal(t, "accounts.json", ConfigFileFlag())

	setArgs(t, "-f", "users.json", "-config=/etc/accountkeeper/config.json")
	assert.Equal(t, "/etc/accountkeeper/config.json", ConfigFileFlag())

	setArgs(t, "-c", "first.json", "-config", "second.json")
	assert.Equal(t, "second.json", ConfigFileFlag())

	setArgs(t, "-f", "users.json", "-v", "info")
	assert.Empty(t, ConfigFileFlag())
}

func TestEnvFileFlag(t *testing.T) {
	setArgs(t, cmdline...)
	assert.Equal(t, "prod.env", EnvFileFlag())

	setArgs(t, "-env=/etc/accountkeeper/.env", "-t", "30m")
	assert.Equal(t, "/etc/accountkeeper/.env", EnvFileFlag())

	// a dangling flag parses to nothing and does not abort the process
	setArgs(t, "-e")
	assert.Empty(t, EnvFileFlag())

	setArgs(t)
	assert.Empty(t, EnvFileFlag())
}
