package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"breate/internal/config"
	"breate/internal/domain/models"
	"breate/internal/lib/hasher"
	"breate/internal/lib/jwt"
	"breate/internal/lib/logger/handlers/slogdiscard"
	"breate/internal/services/auth/mocks"
	tokenservice "breate/internal/services/token_service"
	"breate/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var authCfg = config.AuthConfig{
	AccessSecret:  "access-secret",
	RefreshSecret: "refresh-secret",
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    7 * 24 * time.Hour,
}

type fixture struct {
	auth     *Auth
	saver    *mocks.UserSaver
	provider *mocks.UserProvider
	revoked  *mocks.RevocationStore
	hasher   *hasher.Argon2
	tokens   *tokenservice.TokenService
}

func newFixture(t *testing.T, withRevocations bool) *fixture {
	t.Helper()

	f := &fixture{
		saver:    mocks.NewUserSaver(t),
		provider: mocks.NewUserProvider(t),
		hasher:   hasher.New(config.HasherConfig{Memory: 64, Iterations: 1, Parallelism: 1}),
		tokens:   tokenservice.NewTokenService(authCfg),
	}

	var store RevocationStore
	if withRevocations {
		f.revoked = mocks.NewRevocationStore(t)
		store = f.revoked
	}

	f.auth = New(slogdiscard.NewDiscardLogger(), f.saver, f.provider, f.hasher, f.tokens, store)

	return f
}

func (f *fixture) storedUser(t *testing.T, email, password string) models.User {
	t.Helper()

	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)

	username := DefaultUsername(email)

	return models.User{ID: 7, Email: email, Username: &username, PasswordHash: hash}
}

func TestDefaultUsername(t *testing.T) {
	assert.Equal(t, "a", DefaultUsername("a@x.com"))
	assert.Equal(t, "first.last", DefaultUsername("first.last@example.org"))
	assert.Equal(t, "noat", DefaultUsername("noat"))
}

func TestRegisterNewUser(t *testing.T) {
	ctx := context.Background()

	t.Run("username defaults to the email local part", func(t *testing.T) {
		f := newFixture(t, false)

		var saved models.User
		f.saver.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(models.User) }).
			Return(models.User{ID: 1, Email: "a@x.com"}, nil).Once()

		user, err := f.auth.RegisterNewUser(ctx, RegisterInput{Email: "a@x.com", Password: "secret123", DeriveUsername: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)

		require.NotNil(t, saved.Username)
		assert.Equal(t, "a", *saved.Username)
		assert.NotEqual(t, "secret123", saved.PasswordHash)
		assert.True(t, f.hasher.Verify("secret123", saved.PasswordHash))
	})

	t.Run("username stays empty unless derived", func(t *testing.T) {
		f := newFixture(t, false)

		f.saver.On("SaveUser", ctx, mock.MatchedBy(func(u models.User) bool {
			return u.Username == nil
		})).Return(models.User{ID: 3, Email: "ama@x.com"}, nil).Once()

		_, err := f.auth.RegisterNewUser(ctx, RegisterInput{Email: "ama@x.com", Password: "pw"})
		require.NoError(t, err)
	})

	t.Run("explicit username is kept", func(t *testing.T) {
		f := newFixture(t, false)

		f.saver.On("SaveUser", ctx, mock.MatchedBy(func(u models.User) bool {
			return u.Username != nil && *u.Username == "maker"
		})).Return(models.User{ID: 2}, nil).Once()

		_, err := f.auth.RegisterNewUser(ctx, RegisterInput{Email: "a@x.com", Password: "pw", Username: " maker "})
		require.NoError(t, err)
	})

	cases := []struct {
		name    string
		repoErr error
		want    error
	}{
		{"duplicate email", storage.ErrUserExists, ErrUserExist},
		{"duplicate username", storage.ErrUsernameTaken, ErrUsernameTaken},
		{"unknown archetype", storage.ErrInvalidForeign, ErrInvalidReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, false)

			f.saver.On("SaveUser", ctx, mock.Anything).Return(models.User{}, tc.repoErr).Once()

			_, err := f.auth.RegisterNewUser(ctx, RegisterInput{Email: gofakeit.Email(), Password: "pw"})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("storage failure propagates", func(t *testing.T) {
		f := newFixture(t, false)
		dbErr := errors.New("connection reset")

		f.saver.On("SaveUser", ctx, mock.Anything).Return(models.User{}, dbErr).Once()

		_, err := f.auth.RegisterNewUser(ctx, RegisterInput{Email: gofakeit.Email(), Password: "pw"})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	email := "a@x.com"
	password := "secret123"

	t.Run("success issues tokens for the email", func(t *testing.T) {
		f := newFixture(t, false)
		f.provider.On("UserByEmail", ctx, email).Return(f.storedUser(t, email, password), nil).Once()

		pair, err := f.auth.Login(ctx, email, password)
		require.NoError(t, err)

		access, err := f.tokens.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, email, access.Subject)
		assert.Equal(t, models.TokenTypeAccess, access.Type)

		refresh, err := f.tokens.VerifyRefresh(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, email, refresh.Subject)
		assert.Equal(t, models.TokenTypeRefresh, refresh.Type)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t, false)
		f.provider.On("UserByEmail", ctx, email).Return(f.storedUser(t, email, password), nil).Once()

		pair, err := f.auth.Login(ctx, email, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, pair)
	})

	t.Run("unknown email looks like a wrong password", func(t *testing.T) {
		f := newFixture(t, false)
		f.provider.On("UserByEmail", ctx, "ghost@x.com").Return(models.User{}, storage.ErrUserNotFound).Once()

		_, err := f.auth.Login(ctx, "ghost@x.com", password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture(t, false)
		f.provider.On("UserByEmail", ctx, email).Return(models.User{}, errors.New("db error")).Once()

		_, err := f.auth.Login(ctx, email, password)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	email := "a@x.com"

	t.Run("valid access token", func(t *testing.T) {
		f := newFixture(t, false)
		stored := f.storedUser(t, email, "pw")
		f.provider.On("UserByEmail", ctx, email).Return(stored, nil).Once()

		token, err := f.tokens.IssueAccess(email)
		require.NoError(t, err)

		user, err := f.auth.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.auth.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		f := newFixture(t, false)

		token, err := f.tokens.IssueRefresh(email)
		require.NoError(t, err)

		_, err = f.auth.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, tokenservice.ErrTokenInvalid)
	})

	t.Run("refresh type under the access secret", func(t *testing.T) {
		f := newFixture(t, false)

		token, err := jwt.NewToken(email, models.TokenTypeRefresh, time.Now(), time.Minute, []byte(authCfg.AccessSecret))
		require.NoError(t, err)

		_, err = f.auth.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("missing subject", func(t *testing.T) {
		f := newFixture(t, false)

		token, err := jwt.NewToken("", models.TokenTypeAccess, time.Now(), time.Minute, []byte(authCfg.AccessSecret))
		require.NoError(t, err)

		_, err = f.auth.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newFixture(t, false)
		past := tokenservice.NewTokenService(authCfg, tokenservice.WithClock(func() time.Time {
			return time.Now().Add(-time.Hour)
		}))

		token, err := past.IssueAccess(email)
		require.NoError(t, err)

		_, err = f.auth.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, tokenservice.ErrTokenExpired)
	})

	t.Run("user deleted after issuance", func(t *testing.T) {
		f := newFixture(t, false)
		f.provider.On("UserByEmail", ctx, email).Return(models.User{}, storage.ErrUserNotFound).Once()

		token, err := f.tokens.IssueAccess(email)
		require.NoError(t, err)

		_, err = f.auth.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.NotErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("store failure is not an auth failure", func(t *testing.T) {
		f := newFixture(t, false)
		f.provider.On("UserByEmail", ctx, email).Return(models.User{}, errors.New("db down")).Once()

		token, err := f.tokens.IssueAccess(email)
		require.NoError(t, err)

		_, err = f.auth.Authenticate(ctx, token)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnauthenticated)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	email := "a@x.com"

	t.Run("valid refresh token mints an access token", func(t *testing.T) {
		f := newFixture(t, false)

		refresh, err := f.tokens.IssueRefresh(email)
		require.NoError(t, err)

		access, err := f.auth.Refresh(ctx, refresh)
		require.NoError(t, err)

		meta, err := f.tokens.VerifyAccess(access)
		require.NoError(t, err)
		assert.Equal(t, email, meta.Subject)
	})

	t.Run("missing cookie", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.auth.Refresh(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		f := newFixture(t, false)

		access, err := f.tokens.IssueAccess(email)
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, access)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("access type under the refresh secret", func(t *testing.T) {
		f := newFixture(t, false)

		token, err := jwt.NewToken(email, models.TokenTypeAccess, time.Now(), time.Hour, []byte(authCfg.RefreshSecret))
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f := newFixture(t, false)
		past := tokenservice.NewTokenService(authCfg, tokenservice.WithClock(func() time.Time {
			return time.Now().Add(-8 * 24 * time.Hour)
		}))

		refresh, err := past.IssueRefresh(email)
		require.NoError(t, err)

		access, err := f.auth.Refresh(ctx, refresh)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, tokenservice.ErrTokenExpired)
		assert.Empty(t, access)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		f := newFixture(t, true)

		refresh, err := f.tokens.IssueRefresh(email)
		require.NoError(t, err)
		meta, err := f.tokens.VerifyRefresh(refresh)
		require.NoError(t, err)

		f.revoked.On("IsRefreshTokenRevoked", ctx, meta.ID).Return(true, nil).Once()

		_, err = f.auth.Refresh(ctx, refresh)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("revocation store failure", func(t *testing.T) {
		f := newFixture(t, true)

		refresh, err := f.tokens.IssueRefresh(email)
		require.NoError(t, err)

		f.revoked.On("IsRefreshTokenRevoked", ctx, mock.Anything).Return(false, errors.New("redis down")).Once()

		_, err = f.auth.Refresh(ctx, refresh)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes until expiry", func(t *testing.T) {
		f := newFixture(t, true)

		refresh, err := f.tokens.IssueRefresh("a@x.com")
		require.NoError(t, err)
		meta, err := f.tokens.VerifyRefresh(refresh)
		require.NoError(t, err)

		f.revoked.On("RevokeRefreshToken", ctx, meta.ID, mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 6*24*time.Hour && ttl <= 7*24*time.Hour
		})).Return(nil).Once()

		require.NoError(t, f.auth.Logout(ctx, refresh))
	})

	t.Run("invalid token is ignored", func(t *testing.T) {
		f := newFixture(t, true)

		assert.NoError(t, f.auth.Logout(ctx, "not-a-token"))
		f.revoked.AssertNotCalled(t, "RevokeRefreshToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("without a store", func(t *testing.T) {
		f := newFixture(t, false)

		refresh, err := f.tokens.IssueRefresh("a@x.com")
		require.NoError(t, err)

		assert.NoError(t, f.auth.Logout(ctx, refresh))
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t, true)

		refresh, err := f.tokens.IssueRefresh("a@x.com")
		require.NoError(t, err)

		f.revoked.On("RevokeRefreshToken", ctx, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

		assert.Error(t, f.auth.Logout(ctx, refresh))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores a new hash", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.storedUser(t, "a@x.com", "old-password")

		var stored string
		f.saver.On("UpdatePassword", ctx, user.ID, mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { stored = args.String(2) }).
			Return(nil).Once()

		require.NoError(t, f.auth.ChangePassword(ctx, user, "old-password", "new-password"))
		assert.True(t, f.hasher.Verify("new-password", stored))
		assert.False(t, f.hasher.Verify("old-password", stored))
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.storedUser(t, "a@x.com", "old-password")

		err := f.auth.ChangePassword(ctx, user, "nope", "new-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("user vanished", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.storedUser(t, "a@x.com", "old-password")

		f.saver.On("UpdatePassword", ctx, user.ID, mock.Anything).Return(storage.ErrUserNotFound).Once()

		err := f.auth.ChangePassword(ctx, user, "old-password", "new-password")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
