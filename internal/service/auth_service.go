package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

// SessionStore persists issued sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Lookup(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string) error
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type accessClaims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and validates session-backed access tokens.
type AuthService struct {
	store     recordStore
	sessions  SessionStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs the service.
func NewAuthService(store recordStore, sessions SessionStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "tutor-booking-api"
	}
	return &AuthService{store: store, sessions: sessions, metrics: metrics, validator: validate, logger: logger, config: cfg, now: time.Now}
}

// Login matches username, password and role against a single account.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Username, password, and role are required")
	}

	var user models.User
	found := false
	err := view(ctx, s.store, []string{repository.CollectionUsers}, "failed to load users", func(r *repository.Records) error {
		users, err := r.Users()
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.Username == req.Username && u.Role == req.Role && passwordMatches(u.Password, req.Password) {
				user, found = u, true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		s.metrics.RecordLogin(false)
		s.logger.Info("login rejected", zap.String("username", req.Username), zap.String("ip", req.IP))
		return nil, appErrors.ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		User:      user.Profile(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.TTL),
	}
	token, err := s.sign(session)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign access token")
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to store session")
	}

	s.metrics.RecordLogin(true)
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)), zap.String("ip", req.IP))
	return &dto.LoginResponse{
		User:        session.User,
		AccessToken: token,
		ExpiresIn:   int64(s.config.TTL.Seconds()),
	}, nil
}

// Authenticate resolves a bearer token to the live session's claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, appErrors.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || claims.ID == "" {
		return nil, appErrors.ErrInvalidToken
	}

	session, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.ErrInvalidToken
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if session.Expired(s.now()) {
		return nil, appErrors.ErrInvalidToken
	}
	return models.ClaimsFromSession(session), nil
}

// Logout revokes the caller's session.
func (s *AuthService) Logout(ctx context.Context, claims *models.Claims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		return appErrors.Internal(err, "failed to revoke session")
	}
	s.logger.Info("user logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the session user.
func (s *AuthService) Me(ctx context.Context, claims *models.Claims) (*models.UserProfile, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	session, err := s.sessions.Lookup(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.ErrInvalidToken
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	user := session.User
	return &user, nil
}

func (s *AuthService) sign(session *models.Session) (string, error) {
	claims := &accessClaims{
		Role: session.User.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.User.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}

// passwordMatches accepts bcrypt hashes and legacy plaintext seed values.
func passwordMatches(stored, candidate string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
