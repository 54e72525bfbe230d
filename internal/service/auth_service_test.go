package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gymtrack/gymtrack-api/internal/models"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[string]models.User
	byEmail    map[string]string
	lastLogin  []string
	passwords  map[string]string
	createdIDs []string
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if id, ok := m.byEmail[email]; ok {
		u := m.users[id]
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	m.lastLogin = append(m.lastLogin, id)
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.passwords == nil {
		m.passwords = make(map[string]string)
	}
	m.passwords[id] = passwordHash
	return nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
		m.byEmail = make(map[string]string)
	}
	if user.ID == "" {
		user.ID = "generated"
	}
	m.users[user.ID] = *user
	m.byEmail[user.Email] = user.ID
	m.createdIDs = append(m.createdIDs, user.ID)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour, Issuer: "gymtrack-api"}
}

func seededUserRepo(t *testing.T) *mockUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &mockUserRepo{
		users: map[string]models.User{
			"user-1": {ID: "user-1", Email: "admin@gymtrack.local", PasswordHash: string(hash), FullName: "Admin"},
		},
		byEmail: map[string]string{"admin@gymtrack.local": "user-1"},
	}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := seededUserRepo(t)
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@gymtrack.local", Password: "admin123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, []string{"user-1"}, repo.lastLogin)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "gymtrack-api", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(seededUserRepo(t), validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@gymtrack.local", Password: "nope"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errCode(t, err))
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(seededUserRepo(t), validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@gymtrack.local", Password: "admin123"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errCode(t, err))
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(seededUserRepo(t), validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.ValidateToken("not-a-token")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errCode(t, err))
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := seededUserRepo(t)
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{OldPassword: "admin123", NewPassword: "stronger1"})
	require.NoError(t, err)
	require.Contains(t, repo.passwords, "user-1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwords["user-1"]), []byte("stronger1")))
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	svc := NewAuthService(seededUserRepo(t), validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "stronger1"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errCode(t, err))
}

func TestSeedServiceEnsureAdmin(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewSeedService(repo, zap.NewNop(), SeedConfig{AdminName: "Admin", AdminEmail: "admin@gymtrack.local", AdminPassword: "admin123"})

	require.NoError(t, svc.EnsureAdmin(context.Background()))
	require.Len(t, repo.createdIDs, 1)

	// A second run must not create another account.
	require.NoError(t, svc.EnsureAdmin(context.Background()))
	assert.Len(t, repo.createdIDs, 1)
}
