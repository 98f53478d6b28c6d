package services

import (
	"errors"
	"fmt"
	"time"

	"breate/internal/config"
	"breate/internal/domain/models"
	"breate/internal/lib/jwt"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	AccessTokenExpire  = 15 * time.Minute
	RefreshTokenExpire = 7 * 24 * time.Hour
)

// TokenService issues and verifies access and refresh tokens. Each kind has
// its own secret, so one verifier never accepts the other kind.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type Option func(*TokenService)

// WithClock overrides time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(cfg config.AuthConfig, opts ...Option) *TokenService {
	s := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}

	if s.accessTTL <= 0 {
		s.accessTTL = AccessTokenExpire
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = RefreshTokenExpire
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) IssueAccess(subject string) (string, error) {
	const op = "token_service.IssueAccess"

	token, err := jwt.NewToken(subject, models.TokenTypeAccess, s.now(), s.accessTTL, s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (s *TokenService) IssueRefresh(subject string) (string, error) {
	const op = "token_service.IssueRefresh"

	token, err := jwt.NewToken(subject, models.TokenTypeRefresh, s.now(), s.refreshTTL, s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// GenerateTokens issues an access/refresh pair for subject.
func (s *TokenService) GenerateTokens(subject string) (*models.TokenPair, error) {
	accessToken, err := s.IssueAccess(subject)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.IssueRefresh(subject)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *TokenService) VerifyAccess(token string) (*models.TokenMeta, error) {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefresh(token string) (*models.TokenMeta, error) {
	return s.verify(token, s.refreshSecret)
}

// verify does not look at the type claim; callers compare it with what the
// endpoint expects.
func (s *TokenService) verify(token string, secret []byte) (*models.TokenMeta, error) {
	claims, err := jwt.Parse(token, secret, s.now)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenInvalid
	}

	meta := &models.TokenMeta{
		ID:      claims.ID,
		Subject: claims.Subject,
		Type:    claims.Type,
	}
	if claims.IssuedAt != nil {
		meta.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		meta.ExpiresAt = claims.ExpiresAt.Unix()
	}

	return meta, nil
}
