package service

import (
	"context"
	"testing"

	"drugbee/internal/config"
	"drugbee/internal/dto"
	"drugbee/internal/middleware"
	"drugbee/internal/model"
	"drugbee/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[string]*model.User
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.Username] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.users[username]
	if !ok || !u.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func authFixture(t *testing.T) (AuthService, *config.Config) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{users: map[string]*model.User{
		"cashier1": {
			ID:           uuid.New(),
			Username:     "cashier1",
			PasswordHash: string(hash),
			Name:         "Priya",
			Role:         "cashier",
			Active:       true,
		},
	}}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8}
	return NewAuthService(repo, cfg), cfg
}

func TestLogin_Success(t *testing.T) {
	svc, cfg := authFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cashier1", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "cashier1", resp.User.Username)
	assert.Equal(t, "cashier", resp.User.Role)

	// The issued token parses back with the same claims
	claims := &middleware.JWTClaims{}
	tok, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, tok.Valid)
	assert.Equal(t, "cashier1", claims.Username)
	assert.Equal(t, "cashier", claims.Role)
}

func TestLogin_BadPassword(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cashier1", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
