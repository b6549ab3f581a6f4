package service

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/finvault-backend/internal/config"
	"github.com/finvault-backend/internal/domain/user"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) WithTx(tx pgx.Tx) user.Repository {
	return m
}

var _ user.Repository = (*MockUserRepo)(nil)

// Cost 4 keeps bcrypt fast in tests; production uses the configured cost.
func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates the user and issues a parsable token", func(t *testing.T) {
		repo := &MockUserRepo{}
		svc := NewAuthService(repo, testAuthConfig())

		repo.On("GetByEmail", mock.Anything, "asha@example.com").
			Return(nil, user.ErrUserNotFound{Email: "asha@example.com"}).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
			return u.Email == "asha@example.com" && u.PasswordHash != "" && u.PasswordHash != "secret-password"
		})).Return(nil).Once()

		u, token, err := svc.Register(context.Background(), "Asha Rao", "asha@example.com", "secret-password")

		require.NoError(t, err)
		require.NotNil(t, u)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret-password")))

		parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, u.ID.String(), claims["user_id"])
		assert.Equal(t, "asha@example.com", claims["email"])
		repo.AssertExpectations(t)
	})

	t.Run("rejects a short password before touching the repository", func(t *testing.T) {
		repo := &MockUserRepo{}
		svc := NewAuthService(repo, testAuthConfig())

		_, _, err := svc.Register(context.Background(), "Asha", "asha@example.com", "short")

		assert.ErrorIs(t, err, user.ErrPasswordTooShort)
		repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		repo := &MockUserRepo{}
		svc := NewAuthService(repo, testAuthConfig())

		existing, err := user.NewUser("Asha", "asha@example.com", "hash")
		require.NoError(t, err)
		repo.On("GetByEmail", mock.Anything, "asha@example.com").Return(existing, nil).Once()

		_, _, err = svc.Register(context.Background(), "Asha", "asha@example.com", "secret-password")

		var duplicate user.ErrDuplicateEmail
		assert.ErrorAs(t, err, &duplicate)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &user.User{
		ID:           uuid.New(),
		Name:         "Asha Rao",
		Email:        "asha@example.com",
		PasswordHash: string(hash),
	}

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		repo := &MockUserRepo{}
		svc := NewAuthService(repo, testAuthConfig())

		repo.On("GetByEmail", mock.Anything, "asha@example.com").Return(stored, nil).Once()

		u, token, err := svc.Login(context.Background(), "asha@example.com", "secret-password")

		require.NoError(t, err)
		assert.Equal(t, stored.ID, u.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password collapses into invalid credentials", func(t *testing.T) {
		repo := &MockUserRepo{}
		svc := NewAuthService(repo, testAuthConfig())

		repo.On("GetByEmail", mock.Anything, "asha@example.com").Return(stored, nil).Once()

		_, _, err := svc.Login(context.Background(), "asha@example.com", "wrong-password")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("unknown email collapses into invalid credentials", func(t *testing.T) {
		repo := &MockUserRepo{}
		svc := NewAuthService(repo, testAuthConfig())

		repo.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, user.ErrUserNotFound{Email: "ghost@example.com"}).Once()

		_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever-password")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}
