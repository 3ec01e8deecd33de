// Package keyring stores morrow secrets in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/morrow/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested user
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func set(user, what, secret string) error {
	if secret == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func del(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetAPIKey returns the stored LLM API key.
func GetAPIKey() (string, error) {
	return get(constants.APIKeyKeyringUser)
}

// SetAPIKey stores the LLM API key.
func SetAPIKey(key string) error {
	return set(constants.APIKeyKeyringUser, "API key", key)
}

// DeleteAPIKey removes the stored LLM API key.
func DeleteAPIKey() error {
	return del(constants.APIKeyKeyringUser, "API key")
}

// ResolveAPIKey prefers the MORROW_LLM_API_KEY environment variable and falls
// back to the keyring. It returns ErrNotFound when neither is set.
func ResolveAPIKey() (string, error) {
	if key := os.Getenv(constants.EnvLLMAPIKey); key != "" {
		return key, nil
	}
	return GetAPIKey()
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return get(constants.DefaultKeyringUser)
}

// SetConnectionString stores the database connection string.
func SetConnectionString(connStr string) error {
	return set(constants.DefaultKeyringUser, "connection string", connStr)
}

// DeleteConnectionString removes the database connection string.
func DeleteConnectionString() error {
	return del(constants.DefaultKeyringUser, "connection string")
}

// ResolveConnectionString prefers MORROW_DB_CONNECTION and falls back to
// the keyring.
func ResolveConnectionString() (string, error) {
	if conn := os.Getenv(constants.EnvDBConnection); conn != "" {
		return conn, nil
	}
	return GetConnectionString()
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
