package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/config"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionCache short-circuits the session table lookup done on every
// authenticated request.
type SessionCache interface {
	Remember(ctx context.Context, id uuid.UUID, expiresAt time.Time) error
	Known(ctx context.Context, id uuid.UUID) (bool, error)
	Forget(ctx context.Context, id uuid.UUID) error
}

type noopSessionCache struct{}

func (noopSessionCache) Remember(context.Context, uuid.UUID, time.Time) error { return nil }
func (noopSessionCache) Known(context.Context, uuid.UUID) (bool, error)       { return false, nil }
func (noopSessionCache) Forget(context.Context, uuid.UUID) error              { return nil }

type AuthService struct {
	userRepo       repository.UserRepository
	sessionRepo    repository.SessionRepository
	enrollmentRepo repository.EnrollmentRepository
	cache          SessionCache
	cfg            *config.Config
	logger         *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	enrollmentRepo repository.EnrollmentRepository,
	cache SessionCache,
	cfg *config.Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		enrollmentRepo: enrollmentRepo,
		cache:          cache,
		cfg:            cfg,
		logger:         logger,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

// Claims is what an access token proves about its bearer.
type Claims struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      domain.Role
	ExpiresAt time.Time
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	courseIDs, err := s.enrollmentRepo.CourseIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.EnrolledCourseIDs = courseIDs

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now()
	session := &domain.UserSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.TokenTTL()),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", err
	}
	if err := s.cache.Remember(ctx, session.ID, session.ExpiresAt); err != nil {
		s.logger.Warn("[AuthService.issueToken] failed to cache session", zap.Error(err))
	}

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"jti":  session.ID.String(),
		"role": string(user.Role),
		"exp":  session.ExpiresAt.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken checks the signature and expiry of the token and that its
// session has not been revoked.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, err := parseClaims(mc)
	if err != nil {
		return nil, err
	}

	if err := s.checkSession(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func parseClaims(mc jwt.MapClaims) (*Claims, error) {
	sub, _ := mc["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}

	jti, _ := mc["jti"].(string)
	sessionID, err := uuid.Parse(jti)
	if err != nil {
		return nil, fmt.Errorf("%w: bad token id", domain.ErrInvalidToken)
	}

	role, _ := mc["role"].(string)
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: bad expiry", domain.ErrInvalidToken)
	}

	return &Claims{
		UserID:    userID,
		SessionID: sessionID,
		Role:      domain.Role(role),
		ExpiresAt: exp.Time,
	}, nil
}

func (s *AuthService) checkSession(ctx context.Context, claims *Claims) error {
	known, err := s.cache.Known(ctx, claims.SessionID)
	if err != nil {
		s.logger.Warn("[AuthService.checkSession] session cache unavailable", zap.Error(err))
	}
	if known {
		return nil
	}

	session, err := s.sessionRepo.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrSessionExpired
		}
		return err
	}
	if session.UserID != claims.UserID || !session.ExpiresAt.After(time.Now()) {
		return domain.ErrSessionExpired
	}

	if err := s.cache.Remember(ctx, session.ID, session.ExpiresAt); err != nil {
		s.logger.Warn("[AuthService.checkSession] failed to cache session", zap.Error(err))
	}
	return nil
}

// Logout revokes the session behind a token. Revoking twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	return s.cache.Forget(ctx, sessionID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
