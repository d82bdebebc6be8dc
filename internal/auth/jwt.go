package auth

import (
	"fmt"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Realm identifies the JWT authentication realm.
type Realm string

const (
	RealmUser  Realm = "user"
	RealmAdmin Realm = "admin"
)

const issuer = "bingoo"

// Claims holds the custom JWT claims for both realms.
type Claims struct {
	jwt.RegisteredClaims
	Realm Realm       `json:"realm"`
	Email string      `json:"email,omitempty"`
	Role  domain.Role `json:"role"`
}

// Identity converts validated claims into the caller identity passed to services.
func (c *Claims) Identity() (domain.Identity, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("invalid subject: %w", err)
	}
	return domain.Identity{UserID: id, Role: c.Role, Email: c.Email}, nil
}

// JWTManager handles token generation and validation for both realms.
type JWTManager struct {
	secret      []byte
	userExpiry  time.Duration
	adminExpiry time.Duration
}

// NewJWTManager creates a JWT manager with realm-specific expiry durations.
func NewJWTManager(secret string, userExpiry, adminExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:      []byte(secret),
		userExpiry:  userExpiry,
		adminExpiry: adminExpiry,
	}
}

// GenerateToken creates a signed JWT for the given realm and user.
// Admin-realm tokens are only issued to ADMIN users.
func (m *JWTManager) GenerateToken(realm Realm, user *domain.User) (string, error) {
	var expiry time.Duration
	switch realm {
	case RealmUser:
		expiry = m.userExpiry
	case RealmAdmin:
		if user.Role != domain.RoleAdmin {
			return "", fmt.Errorf("role %s cannot hold an admin token", user.Role)
		}
		expiry = m.adminExpiry
	default:
		return "", fmt.Errorf("unknown realm: %s", realm)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
		Realm: realm,
		Email: user.Email,
		Role:  user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT, returning claims if valid.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// ValidateTokenForRealm validates a token and ensures it belongs to the expected realm.
func (m *JWTManager) ValidateTokenForRealm(tokenString string, expectedRealm Realm) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Realm != expectedRealm {
		return nil, fmt.Errorf("expected realm %s, got %s", expectedRealm, claims.Realm)
	}
	return claims, nil
}

// ExpiryFor returns the token lifetime for realm.
func (m *JWTManager) ExpiryFor(realm Realm) time.Duration {
	if realm == RealmAdmin {
		return m.adminExpiry
	}
	return m.userExpiry
}
