// Package secrets resolves credentials from the environment or Azure Key Vault
package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource selects where secrets are read from
type SecretSource string

const (
	SourceEnvironment SecretSource = "environment"
	SourceVault       SecretSource = "vault"
	// SourceAuto picks the environment in development and the vault elsewhere
	SourceAuto SecretSource = "auto"
)

// Getter resolves a secret by vault name, preferring an explicitly set environment variable
type Getter interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

type vaultReader interface {
	GetSecret(ctx context.Context, secretName string) (string, error)
}

// Provider reads secrets from one source
type Provider struct {
	source SecretSource
	vault  vaultReader
	logger *zap.Logger
}

type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ResolveSource turns SourceAuto into a concrete source for the environment
func ResolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto {
		return source
	}
	switch environment {
	case "development", "local", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)
	provider := &Provider{source: source, logger: logger}

	switch source {
	case SourceEnvironment:
	case SourceVault:
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		provider.vault = vault
	default:
		return nil, fmt.Errorf("unknown secret source: %s", source)
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return provider, nil
}

// GetSecret reads a secret. For the environment source secretName is the
// variable name.
func (p *Provider) GetSecret(ctx context.Context, secretName string) (string, error) {
	if p.source == SourceEnvironment {
		value := os.Getenv(secretName)
		if value == "" {
			return "", fmt.Errorf("environment variable '%s' not set", secretName)
		}
		return value, nil
	}
	return p.vault.GetSecret(ctx, secretName)
}

// GetSecretOrEnv returns envName when it is set, otherwise the secret from the configured source
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if value := os.Getenv(envName); value != "" {
		p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
		return value, nil
	}
	return p.GetSecret(ctx, secretName)
}

var _ Getter = (*Provider)(nil)
