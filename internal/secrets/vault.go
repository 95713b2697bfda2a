package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

const defaultVaultCacheTTL = 5 * time.Minute

// secretFetcher is the subset of *azsecrets.Client used here
type secretFetcher interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// VaultClient reads the latest version of Key Vault secrets, optionally
// keeping them in memory for a TTL.
type VaultClient struct {
	client   secretFetcher
	logger   *zap.Logger
	cacheTTL time.Duration // zero disables caching
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

type VaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewVaultClient authenticates with DefaultAzureCredential: environment
// credentials, managed identity or the Azure CLI login.
func NewVaultClient(cfg *VaultConfig, logger *zap.Logger) (*VaultClient, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	var ttl time.Duration
	if cfg.CacheEnabled {
		ttl = cfg.CacheTTL
		if ttl <= 0 {
			ttl = defaultVaultCacheTTL
		}
	}

	logger.Info("Key Vault client initialized",
		zap.String("vault_url", vaultURL),
		zap.Duration("cache_ttl", ttl),
	)
	return newVaultClient(client, ttl, logger), nil
}

func newVaultClient(client secretFetcher, cacheTTL time.Duration, logger *zap.Logger) *VaultClient {
	return &VaultClient{
		client:   client,
		logger:   logger,
		cacheTTL: cacheTTL,
		now:      time.Now,
		cache:    make(map[string]cachedSecret),
	}
}

// GetSecret returns the current value of a secret
func (v *VaultClient) GetSecret(ctx context.Context, secretName string) (string, error) {
	if value, ok := v.lookup(secretName); ok {
		return value, nil
	}

	resp, err := v.client.GetSecret(ctx, secretName, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret '%s': %w", secretName, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", secretName)
	}

	v.store(secretName, *resp.Value)
	v.logger.Debug("secret fetched from Key Vault", zap.String("secret_name", secretName))
	return *resp.Value, nil
}

func (v *VaultClient) lookup(secretName string) (string, bool) {
	if v.cacheTTL == 0 {
		return "", false
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	entry, ok := v.cache[secretName]
	if !ok {
		return "", false
	}
	if v.now().After(entry.expiresAt) {
		delete(v.cache, secretName)
		return "", false
	}
	return entry.value, true
}

func (v *VaultClient) store(secretName, value string) {
	if v.cacheTTL == 0 {
		return
	}
	v.mu.Lock()
	v.cache[secretName] = cachedSecret{value: value, expiresAt: v.now().Add(v.cacheTTL)}
	v.mu.Unlock()
}
