package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
)

// Supported secret backends
const (
	BackendLocal = "local"
	BackendAWS   = "aws"
	BackendVault = "vault"
)

// Settings selects and configures a secret backend
type Settings struct {
	Backend   string
	LocalPath string
	AWS       *AWSSecretsManagerConfig
	Vault     *VaultConfig
}

// New creates the provider for the configured backend
func New(ctx context.Context, settings Settings, logger *zap.Logger) (ports.SecretProvider, error) {
	switch settings.Backend {
	case BackendLocal, "":
		return NewLocalSecretManager(settings.LocalPath, logger), nil
	case BackendAWS:
		if settings.AWS == nil {
			return nil, fmt.Errorf("aws secrets backend is not configured")
		}
		return NewAWSSecretsManagerAdapter(ctx, settings.AWS, logger)
	case BackendVault:
		if settings.Vault == nil {
			return nil, fmt.Errorf("vault secrets backend is not configured")
		}
		return NewVaultAdapter(ctx, settings.Vault, logger)
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", settings.Backend)
	}
}
