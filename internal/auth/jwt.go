package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/config"
	"github.com/straye-as/crm-core/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the payload of a CRM access token
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator validates HS256 bearer tokens signed with the shared secret
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
	}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: bearer tokens are not enabled", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a valid user id", ErrInvalidToken)
	}

	userCtx := &UserContext{
		UserID:      userID,
		DisplayName: claims.Name,
		Email:       claims.Email,
		Roles:       ExtractRoles(claims.Roles),
	}
	return userCtx, nil
}

// ExtractRoles keeps the known roles from a token's role claim
func ExtractRoles(raw []string) []domain.UserRoleType {
	roles := make([]domain.UserRoleType, 0, len(raw))
	for _, r := range raw {
		role := domain.UserRoleType(r)
		if role.IsValid() {
			roles = append(roles, role)
		}
	}
	return roles
}

// IssueToken signs a token for the given user. Used by tooling and tests.
func IssueToken(cfg *config.AuthConfig, user *UserContext, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  user.DisplayName,
		Email: user.Email,
		Roles: user.RolesAsStrings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}
