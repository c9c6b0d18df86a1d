package authService

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"greeny/internal/api/auth"
	authRepository "greeny/internal/api/auth/repository"
	"greeny/internal/entity"
	"greeny/pkg/bcrypt"
	jwtPkg "greeny/pkg/jwt"
	"greeny/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]entity.User
	byEmail map[string]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]entity.User{}, byEmail: map[string]string{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, user entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[user.Email]; ok {
		return auth.ErrEmailAlreadyExists
	}
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user.ID
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return entity.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return entity.User{}, auth.ErrUserNotFound
	}
	return f.byID[id], nil
}

type fakeRepository struct {
	users *fakeUsers
}

func (r *fakeRepository) NewClient(bool) (authRepository.Client, error) {
	noop := func() error { return nil }
	return authRepository.Client{Users: r.users, Commit: noop, Rollback: noop}, nil
}

type fakeRedis struct {
	counts map[string]int64
	err    error
}

func (f *fakeRedis) IncrementAttempts(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedis) GetAttempts(_ context.Context, key string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[key], nil
}

func (f *fakeRedis) ResetAttempts(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.counts, key)
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func newTestService(t *testing.T, rds *fakeRedis) AuthService {
	t.Helper()
	t.Setenv(jwtPkg.AccessTokenSecretEnv, "test-secret")

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return New(log, &fakeRepository{users: newFakeUsers()}, rds, bcrypt.NewWithCost(4), utils.New())
}

func register(t *testing.T, svc AuthService, email, password string) string {
	t.Helper()
	res, err := svc.User().RegisterUser(context.Background(), auth.CreateUserRequest{
		Name:     "Rina",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return res.UserID
}

func TestRegisterUser(t *testing.T) {
	svc := newTestService(t, &fakeRedis{counts: map[string]int64{}})

	res, err := svc.User().RegisterUser(context.Background(), auth.CreateUserRequest{
		Name:     " Rina ",
		Email:    "Rina@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "User added", res.Message)
	assert.False(t, res.IsAdmin)
	assert.Len(t, res.UserID, 26)

	profile, err := svc.User().GetProfile(context.Background(), res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "rina@example.com", profile.Email)
	assert.Equal(t, "Rina", profile.Name)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.User().RegisterUser(context.Background(), auth.CreateUserRequest{
			Name:     "Other",
			Email:    "rina@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.User().RegisterUser(context.Background(), auth.CreateUserRequest{
			Name:     "Short",
			Email:    "short@example.com",
			Password: "1234567",
		})
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})

	t.Run("password is hashed", func(t *testing.T) {
		repo, err := svc.GetRepository().NewClient(false)
		require.NoError(t, err)
		user, err := repo.Users.GetByID(context.Background(), res.UserID)
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", user.Password)
	})
}

func TestLogin(t *testing.T) {
	rds := &fakeRedis{counts: map[string]int64{}}
	svc := newTestService(t, rds)
	userID := register(t, svc, "farmer@example.com", "secret123")

	t.Run("success", func(t *testing.T) {
		res, err := svc.Auth().Login(context.Background(), auth.LoginUserRequest{
			Email:    "Farmer@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, userID, res.UserID)
		assert.Equal(t, int64(60), res.ExpiresInMinutes)

		token, err := jwtPkg.Parse(res.AccessToken, jwtPkg.AccessTokenSecretEnv)
		require.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, userID, claims["id"])
		assert.Equal(t, false, claims["is_admin"])
	})

	t.Run("wrong password never returns account data", func(t *testing.T) {
		res, err := svc.Auth().Login(context.Background(), auth.LoginUserRequest{
			Email:    "farmer@example.com",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidEmailOrPassword)
		assert.Equal(t, auth.LoginUserResponse{}, res)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Auth().Login(context.Background(), auth.LoginUserRequest{
			Email:    "nobody@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidEmailOrPassword)
	})
}

func TestLoginThrottle(t *testing.T) {
	rds := &fakeRedis{counts: map[string]int64{}}
	svc := newTestService(t, rds)
	register(t, svc, "farmer@example.com", "secret123")

	bad := auth.LoginUserRequest{Email: "farmer@example.com", Password: "nope-nope"}
	for i := 0; i < maxLoginFailures; i++ {
		_, err := svc.Auth().Login(context.Background(), bad)
		require.ErrorIs(t, err, auth.ErrInvalidEmailOrPassword)
	}

	_, err := svc.Auth().Login(context.Background(), auth.LoginUserRequest{
		Email:    "farmer@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, auth.ErrTooManyLoginAttempts)

	delete(rds.counts, loginAttemptsKey("farmer@example.com"))
	_, err = svc.Auth().Login(context.Background(), auth.LoginUserRequest{
		Email:    "farmer@example.com",
		Password: "secret123",
	})
	assert.NoError(t, err)
}

func TestLoginFailsOpenWithoutRedis(t *testing.T) {
	svc := newTestService(t, &fakeRedis{counts: map[string]int64{}, err: errors.New("connection refused")})
	register(t, svc, "farmer@example.com", "secret123")

	_, err := svc.Auth().Login(context.Background(), auth.LoginUserRequest{
		Email:    "farmer@example.com",
		Password: "secret123",
	})
	assert.NoError(t, err)
}
