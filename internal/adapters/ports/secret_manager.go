package ports

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when a secret path does not exist
var ErrSecretNotFound = errors.New("secret not found")

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., client key)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretProvider defines the port for reading secrets from a secret store
// Backends: local files, AWS Secrets Manager, HashiCorp Vault
type SecretProvider interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - Local: file path relative to the base directory
	//   - AWS: secret name or ARN, e.g. "checkout-kit/test/client-key"
	//   - Vault: path below the KV mount, e.g. "checkout-kit/test"
	// Returns ErrSecretNotFound if the secret does not exist
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
