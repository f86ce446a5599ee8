// Package config loads worker settings from the environment with a
// fail-open policy: a value that does not parse or validate is replaced by
// its default and reported as a warning instead of stopping the process.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult is the outcome of loading one setting.
//
// Value holds the environment value, or the default when the variable is
// unset or rejected. Warnings has one entry per fallback applied.
type ConfigLoadResult struct {
	Value           any
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString returns envKey's value, or defaultValue when it is unset or
// empty. No validation is done.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string setting and checks it with validator,
// which may be nil.
//
//	result := LoadEnvWithFallback("CRON_SCHEDULE", "*/5 * * * *", ValidateCronSchedule)
//	schedule := result.Value.(string)
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	return load(envKey, defaultValue, func(raw string) (string, error) {
		return raw, nil
	}, validator)
}

// LoadEnvDuration loads a Go duration string ("90s", "10m", "1h30m").
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	return load(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer. Signs are allowed, anything else
// after the digits is rejected.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	return load(envKey, defaultValue, func(raw string) (int, error) {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return v, nil
	}, validator)
}

// load reads envKey, converts it with parse and checks it with validator.
// An unset variable yields the default without a warning.
func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validator != nil {
		err = validator(value)
	}
	if err != nil {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue,
			)},
			FallbackApplied: true,
		}
	}
	return ConfigLoadResult{Value: value}
}
