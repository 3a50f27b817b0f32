package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/auth"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Identity gateway actions
const (
	ActionRegister  = "register"
	ActionLogin     = "login"
	ActionLogout    = "logout"
	ActionCheckAuth = "check-auth"
)

const (
	msgUserExists     = "User already exists with the same email! Please try again"
	msgBadCredentials = "Incorrect email or password! Please try again"
	msgNoAuthHeader   = "No authorization header"
	msgInvalidToken   = "Invalid token"
)

// AuthService registers users and issues, verifies and revokes tokens
type AuthService struct {
	users      store.UserStore
	tokens     *auth.TokenManager
	revoker    TokenRevoker
	adminEmail string
	logger     *zap.Logger
}

// NewAuthService creates a new auth service; revoker may be nil
func NewAuthService(users store.UserStore, tokens *auth.TokenManager, revoker TokenRevoker, adminEmail string) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		revoker:    revoker,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		logger:     util.GetLogger(),
	}
}

// Credentials is the body of an identity gateway call
type Credentials struct {
	Action   string `json:"action"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned on login and check-auth
type Session struct {
	User  *auth.Identity `json:"user"`
	Token string         `json:"token,omitempty"`
}

func recordAuth(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	util.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}

// Register creates a user with a bcrypt password hash
func (s *AuthService) Register(ctx context.Context, in *Credentials) (user *models.User, err error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()
	defer func() { recordAuth(ActionRegister, err) }()

	email := strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.UserName) == "" || email == "" || in.Password == "" {
		return nil, apperr.InvalidInput("Invalid data provided!")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	if s.adminEmail != "" && strings.ToLower(email) == s.adminEmail {
		role = models.RoleAdmin
	}

	user = &models.User{
		UserName:     strings.TrimSpace(in.UserName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict(msgUserExists)
		}
		return nil, apperr.Store(err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("role", role))
	return user, nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, in *Credentials) (session *Session, err error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()
	defer func() { recordAuth(ActionLogin, err) }()

	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	token, identity, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return &Session{User: identity, Token: token}, nil
}

// Authenticate resolves a bearer token into an identity
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, apperr.Unauthorized(msgNoAuthHeader)
	}

	identity, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized(msgInvalidToken)
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsTokenRevoked(ctx, identity.TokenID)
		if err != nil {
			s.logger.Warn("Token revocation check failed", zap.Error(err))
		} else if revoked {
			return nil, apperr.Unauthorized(msgInvalidToken)
		}
	}
	return identity, nil
}

// CheckAuth returns the identity behind a token
func (s *AuthService) CheckAuth(ctx context.Context, token string) (session *Session, err error) {
	ctx, span := util.StartSpan(ctx, "AuthService.CheckAuth")
	defer span.End()
	defer func() { recordAuth(ActionCheckAuth, err) }()

	identity, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Session{User: identity}, nil
}

// Logout revokes the token until it would have expired; a missing or invalid token still logs out
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Logout")
	defer span.End()
	defer func() { recordAuth(ActionLogout, err) }()

	if token == "" || s.revoker == nil {
		return nil
	}

	identity, parseErr := s.tokens.Parse(token)
	if parseErr != nil {
		return nil
	}

	if err := s.revoker.RevokeToken(ctx, identity.TokenID, time.Until(identity.ExpiresAt)); err != nil {
		return apperr.Store(err)
	}
	s.logger.Info("User logged out", zap.String("user_id", identity.UserID))
	return nil
}
