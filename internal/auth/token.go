package auth

import (
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified caller attached to a request
type Identity struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"userName"`
	Role      string    `json:"role"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// IsAdmin reports whether the identity carries the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// TokenManager issues and verifies HS256 bearer tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for user
func (m *TokenManager) Issue(user *models.User) (string, *Identity, error) {
	identity := &Identity{
		UserID:    user.ID,
		Email:     user.Email,
		UserName:  user.UserName,
		Role:      user.Role,
		TokenID:   uuid.New().String(),
		ExpiresAt: m.now().Add(m.ttl).Truncate(time.Second),
	}

	claims := jwt.MapClaims{
		"user_id":  identity.UserID,
		"email":    identity.Email,
		"userName": identity.UserName,
		"role":     identity.Role,
		"jti":      identity.TokenID,
		"exp":      identity.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, identity, nil
}

// Parse verifies a token and returns the identity it carries
func (m *TokenManager) Parse(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	identity := &Identity{
		UserID:   stringClaim(claims, "user_id"),
		Email:    stringClaim(claims, "email"),
		UserName: stringClaim(claims, "userName"),
		Role:     stringClaim(claims, "role"),
		TokenID:  stringClaim(claims, "jti"),
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || identity.UserID == "" {
		return nil, ErrInvalidToken
	}
	identity.ExpiresAt = exp.Time
	return identity, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
