// Package storage persists the task lists morrow reads from and writes to.
package storage

import "fmt"

// Open returns the provider for database, which is either a sqlite file path
// or a PostgreSQL URL. The store is not loaded.
func Open(database string, fromSecretStore bool) (Provider, error) {
	if IsPostgres(database) {
		if err := ValidateConnString(database, fromSecretStore); err != nil {
			return nil, err
		}
		return NewPostgresStore(database), nil
	}
	if database == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	return NewSQLiteStore(database), nil
}
