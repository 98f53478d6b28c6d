package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"breate/internal/domain/models"
	"breate/internal/lib/logger/sl"
	"breate/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExist          = errors.New("user already exist")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidReference   = errors.New("unknown archetype or tier")

	ErrUnauthenticated = errors.New("not authenticated")
	ErrWrongTokenType  = errors.New("wrong token type")
	ErrInvalidPayload  = errors.New("invalid token payload")
	ErrTokenRevoked    = errors.New("token revoked")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	hasher      PasswordHasher
	tokens      TokenIssuer
	revocations RevocationStore
	now         func() time.Time
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) (models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

type TokenIssuer interface {
	GenerateTokens(subject string) (*models.TokenPair, error)
	IssueAccess(subject string) (string, error)
	VerifyAccess(token string) (*models.TokenMeta, error)
	VerifyRefresh(token string) (*models.TokenMeta, error)
}

// RevocationStore is optional. Without one, logout only clears the cookie.
type RevocationStore interface {
	RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRefreshTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Email       string
	Password    string
	Username    string
	ArchetypeID *int64
	TierID      *int64
	// DeriveUsername fills a missing Username from the email local part.
	// Without it the account is stored with no username.
	DeriveUsername bool
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	hasher PasswordHasher,
	tokens TokenIssuer,
	revocations RevocationStore,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		now:         time.Now,
	}
}

// RegisterNewUser stores a new identity. A missing username stays empty unless
// in.DeriveUsername is set.
func (a *Auth) RegisterNewUser(ctx context.Context, in RegisterInput) (models.User, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", in.Email),
	)

	log.Info("register user")

	passHash, err := a.hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	name := strings.TrimSpace(in.Username)
	if name == "" && in.DeriveUsername {
		name = DefaultUsername(in.Email)
	}

	var username *string
	if name != "" {
		username = &name
	}

	user, err := a.usrSaver.SaveUser(ctx, models.User{
		Email:        in.Email,
		Username:     username,
		PasswordHash: passHash,
		ArchetypeID:  in.ArchetypeID,
		TierID:       in.TierID,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			log.Warn("user already exist", sl.Err(err))

			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExist)
		case errors.Is(err, storage.ErrUsernameTaken):
			log.Warn("username already taken", slog.String("username", name))

			return models.User{}, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		case errors.Is(err, storage.ErrInvalidForeign):
			return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidReference)
		}

		log.Error("failed to save user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))

	return user, nil
}

// DefaultUsername returns everything before the first '@'.
func DefaultUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")

	return local
}

// Login checks the credentials and issues a token pair for the email.
func (a *Auth) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", email),
	)

	log.Info("attempting to login user")

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		log.Info("invalid credentials")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	tokens, err := a.tokens.GenerateTokens(user.Email)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully")

	return tokens, nil
}

// Authenticate resolves an access token to the stored identity. It reads the
// store once per call and never writes.
func (a *Auth) Authenticate(ctx context.Context, token string) (models.User, error) {
	const op = "auth.Authenticate"

	if token == "" {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	meta, err := a.tokens.VerifyAccess(token)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, err)
	}

	if meta.Type != models.TokenTypeAccess {
		return models.User{}, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, ErrWrongTokenType)
	}

	if meta.Subject == "" {
		return models.User{}, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, ErrInvalidPayload)
	}

	user, err := a.usrProvider.UserByEmail(ctx, meta.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		a.log.Error("failed to load authenticated user", slog.String("op", op), sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Refresh mints a new access token from a refresh token. The subject is not
// looked up again, so a deleted account keeps refreshing until the token expires.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "auth.Refresh"

	log := a.log.With(slog.String("op", op))

	meta, err := a.verifyRefresh(ctx, refreshToken)
	if err != nil {
		log.Info("refresh rejected", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	access, err := a.tokens.IssueAccess(meta.Subject)
	if err != nil {
		log.Error("failed to issue access token", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return access, nil
}

func (a *Auth) verifyRefresh(ctx context.Context, refreshToken string) (*models.TokenMeta, error) {
	if refreshToken == "" {
		return nil, ErrUnauthenticated
	}

	meta, err := a.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if meta.Type != models.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrWrongTokenType)
	}

	if meta.Subject == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrInvalidPayload)
	}

	if a.revocations != nil && meta.ID != "" {
		revoked, err := a.revocations.IsRefreshTokenRevoked(ctx, meta.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrTokenRevoked)
		}
	}

	return meta, nil
}

// Logout revokes the refresh token until it would have expired. Tokens that
// no longer verify need no revocation and are ignored.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	const op = "auth.Logout"

	if a.revocations == nil || refreshToken == "" {
		return nil
	}

	meta, err := a.tokens.VerifyRefresh(refreshToken)
	if err != nil || meta.ID == "" {
		return nil
	}

	ttl := time.Unix(meta.ExpiresAt, 0).Sub(a.now())
	if err := a.revocations.RevokeRefreshToken(ctx, meta.ID, ttl); err != nil {
		a.log.Error("failed to revoke refresh token", slog.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("refresh token revoked", slog.String("op", op), slog.String("sub", meta.Subject))

	return nil
}

// ChangePassword replaces the password of user after checking the current one.
func (a *Auth) ChangePassword(ctx context.Context, user models.User, current, next string) error {
	const op = "auth.ChangePassword"

	log := a.log.With(
		slog.String("op", op),
		slog.Int64("user_id", user.ID),
	)

	if !a.hasher.Verify(current, user.PasswordHash) {
		log.Info("current password mismatch")

		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	passHash, err := a.hasher.Hash(next)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.UpdatePassword(ctx, user.ID, passHash); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		log.Error("failed to update password", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password changed")

	return nil
}
