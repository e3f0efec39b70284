package cli

import (
	"fmt"
	"os"
	"time"
)

// Environment fallbacks for flags.
const (
	EnvRoot    = "SCNCONFORM_ROOT"
	EnvTimeout = "SCNCONFORM_TIMEOUT"
)

func envOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// envDuration reads a Go duration ("30s", "2m") from key. An unparsable
// value returns the fallback together with an error, so the command can
// report it when the flag was not given explicitly.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// timeoutFlag is the --timeout value shared by run and smoke.
type timeoutFlag struct {
	value  time.Duration
	envErr error
}

func newTimeoutFlag(fallback time.Duration) *timeoutFlag {
	d, err := envDuration(EnvTimeout, fallback)
	return &timeoutFlag{value: d, envErr: err}
}

// resolve validates the effective timeout. explicit reports whether the flag
// was set on the command line, which overrides a bad environment value.
func (t *timeoutFlag) resolve(explicit bool) (time.Duration, error) {
	if t.envErr != nil && !explicit {
		return 0, t.envErr
	}
	if t.value < 0 {
		return 0, fmt.Errorf("invalid timeout %s: must not be negative", t.value)
	}
	return t.value, nil
}
