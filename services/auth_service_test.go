package services

import (
	"testing"
	"time"

	"chathub/auth"
	"chathub/errors"
	"chathub/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAuthService(repositories.NewUserRepository(db), time.Hour)
}

func Test_Register_Then_Login(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	// When an account registers
	user, err := service.Register(auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ng&Secret!pass",
	})
	req.NoError(err)
	req.NotEmpty(user.ID)
	req.NotEqual("Str0ng&Secret!pass", user.PasswordHash)

	// Then login issues a token whose claims carry the identity
	token, logged, err := service.Login("alice@example.com", "Str0ng&Secret!pass")
	req.NoError(err)
	req.Equal(user.ID, logged.ID)

	identity, err := auth.Verify(token)
	req.NoError(err)
	req.Equal(user.ID, identity.ID)
	req.Equal("alice", identity.Username)
}

func Test_Login_Failures_Are_Indistinguishable(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	_, err := service.Register(auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ng&Secret!pass",
	})
	req.NoError(err)

	// An unknown email and a wrong password yield the same error
	_, _, err = service.Login("nobody@example.com", "Str0ng&Secret!pass")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	_, _, err = service.Login("alice@example.com", "wrong password")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func Test_Register_Rejects_Weak_Password(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	_, err := service.Register(auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "alllowercasebutlong",
	})
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func Test_Register_Rejects_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)
	request := auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ng&Secret!pass",
	}

	_, err := service.Register(request)
	req.NoError(err)

	request.Username = "impostor"
	_, err = service.Register(request)
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}
