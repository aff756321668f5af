package internal

import "fmt"

// NewStoreFromConfig builds the ObjectStore selected by cfg. For the drive
// backend a missing bearer token is not a construction error: it returns
// (nil, ErrAuthUnavailable) so callers can degrade to a non-persisting
// engine instead of failing.
func NewStoreFromConfig(cfg *Config) (ObjectStore, error) {
	switch cfg.Backend {
	case "sqlite":
		store, err := OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite backend: %w", err)
		}
		return store, nil
	case "drive":
		tokens := &FileTokenSource{Path: cfg.TokenFile}
		if _, err := tokens.Token(); err != nil {
			return nil, ErrAuthUnavailable
		}
		return NewDriveStore(tokens, cfg.RequestTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
