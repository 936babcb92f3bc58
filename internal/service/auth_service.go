package service

import (
	"context"
	"crypto/subtle"
	"time"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/repository/contract"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

// DefaultJwtSecret signs tokens when no secret is configured.
const DefaultJwtSecret = "default_secret"

type AuthConfig struct {
	JwtSecret string
	TokenTTL  time.Duration
	// DefaultPassword is accepted while no password hash has been stored.
	DefaultPassword string
}

type authService struct {
	settings contract.SettingsRepository
	cfg      AuthConfig
	logger   logger.ILogger
	now      func() time.Time
}

func NewAuthService(settings contract.SettingsRepository, cfg AuthConfig, log logger.ILogger) IAuthService {
	if cfg.JwtSecret == "" {
		cfg.JwtSecret = DefaultJwtSecret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.DefaultPassword == "" {
		cfg.DefaultPassword = "password"
	}
	return &authService{
		settings: settings,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("AUTH", "Settings unreadable, checking against defaults", map[string]interface{}{"error": err.Error()})
	}

	if req.Username != settings.AdminUsername {
		return nil, ErrInvalidCredentials
	}

	if settings.AdminPasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(settings.AdminPasswordHash), []byte(req.Password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	} else if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.DefaultPassword)) != 1 {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"user_id": settings.AdminUsername,
		"role":    "admin",
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JwtSecret))
	if err != nil {
		return nil, err
	}

	s.logger.Info("AUTH", "Admin logged in", map[string]interface{}{"username": settings.AdminUsername})

	return &dto.LoginResponse{
		AccessToken: signedToken,
		ExpiresAt:   expiresAt.Unix(),
		Username:    settings.AdminUsername,
	}, nil
}
