package neat

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks a configuration mistake. Training cannot proceed.
	ErrConfig = errors.New("config error")
	// ErrInnovationMissing marks an inconsistent innovation ledger. It aborts
	// the generation in which it is detected.
	ErrInnovationMissing = errors.New("innovation ledger inconsistency")
	// ErrCheckpoint marks a snapshot that cannot be restored.
	ErrCheckpoint = errors.New("invalid checkpoint")
	// ErrNoGeneration is returned when a result is requested before the
	// first generation has completed.
	ErrNoGeneration = errors.New("no completed generation")
)

// ConfigError names the offending setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
