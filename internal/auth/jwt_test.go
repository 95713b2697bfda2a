package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/auth"
	"github.com/straye-as/crm-core/internal/config"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{JWTSecret: "test-secret-with-enough-entropy", JWTIssuer: "straye-crm"}
}

func testUser(roles ...domain.UserRoleType) *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Kari Nordmann",
		Email:       "kari@straye.io",
		Roles:       roles,
	}
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	cfg := testAuthConfig()
	user := testUser(domain.RoleManager, domain.RoleSales)

	token, err := auth.IssueToken(cfg, user, time.Hour)
	require.NoError(t, err)

	got, err := auth.NewJWTValidator(cfg).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)
	assert.Equal(t, "Kari Nordmann", got.DisplayName)
	assert.Equal(t, "kari@straye.io", got.Email)
	assert.Equal(t, []domain.UserRoleType{domain.RoleManager, domain.RoleSales}, got.Roles)
}

func TestJWTValidator_Rejects(t *testing.T) {
	cfg := testAuthConfig()
	validator := auth.NewJWTValidator(cfg)

	t.Run("expired", func(t *testing.T) {
		token, err := auth.IssueToken(cfg, testUser(), -time.Minute)
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := &config.AuthConfig{JWTSecret: "another-secret", JWTIssuer: cfg.JWTIssuer}
		token, err := auth.IssueToken(other, testUser(), time.Hour)
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := &config.AuthConfig{JWTSecret: cfg.JWTSecret, JWTIssuer: "someone-else"}
		token, err := auth.IssueToken(other, testUser(), time.Hour)
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		claims := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    cfg.JWTIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("other signing method", func(t *testing.T) {
		claims := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    cfg.JWTIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.JWTSecret))
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("no secret configured", func(t *testing.T) {
		token, err := auth.IssueToken(cfg, testUser(), time.Hour)
		require.NoError(t, err)

		_, err = auth.NewJWTValidator(&config.AuthConfig{}).ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := validator.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestExtractRoles(t *testing.T) {
	roles := auth.ExtractRoles([]string{"admin", "unknown", "sales", ""})
	assert.Equal(t, []domain.UserRoleType{domain.RoleAdmin, domain.RoleSales}, roles)
	assert.Empty(t, auth.ExtractRoles(nil))
}

func TestUserContext(t *testing.T) {
	user := testUser(domain.RoleSales)
	assert.True(t, user.HasRole(domain.RoleSales))
	assert.False(t, user.HasRole(domain.RoleAdmin))
	assert.True(t, user.HasAnyRole(domain.RoleAdmin, domain.RoleSales))
	assert.False(t, user.HasAnyRole(domain.PipelineEditorRoles...))

	system := auth.SystemUser()
	assert.Equal(t, auth.SystemUserID, system.UserID)
	assert.True(t, system.HasAnyRole(domain.PipelineEditorRoles...))
}
