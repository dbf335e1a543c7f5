package secrets

import "context"

// Provider resolves named secrets from an external secrets manager.
type Provider interface {
	// GetSecret retrieves a secret by name and returns its key-value entries.
	GetSecret(ctx context.Context, name string) (map[string]string, error)
}
