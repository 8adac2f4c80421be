package translay

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a pass is requested while another is in flight
// for the same session.
var ErrBusy = errors.New("translation already in progress")

// ErrNoContent is returned when no translatable target or blocks were found.
var ErrNoContent = errors.New("no translatable content found")

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates a missing or invalid backend configuration value.
// Fatal for a network-requiring call, never for a dictionary-only pass.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s is not set", e.Field)
}

// ProviderError indicates a translation backend failure (non-2xx status,
// unparseable or empty response). Fatal for a single block's translation; a
// pass continues with the remaining blocks.
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// RegistryError indicates a cloud dictionary registry failure.
type RegistryError struct {
	Message string
	Cause   error
}

func (e *RegistryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("registry error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("registry error: %s", e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Cause
}
