package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gymtrack/gymtrack-api/internal/models"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type seedUserRepository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
}

// SeedConfig holds the bootstrap admin account.
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// SeedService bootstraps the default admin so a fresh deployment is usable
// without manual inserts.
type SeedService struct {
	repo   seedUserRepository
	logger *zap.Logger
	config SeedConfig
}

// NewSeedService constructs a SeedService.
func NewSeedService(repo seedUserRepository, logger *zap.Logger, config SeedConfig) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{repo: repo, logger: logger, config: config}
}

// EnsureAdmin creates the default admin when no account exists yet. It is
// idempotent across restarts.
func (s *SeedService) EnsureAdmin(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash admin password")
	}
	admin := &models.User{
		Email:        s.config.AdminEmail,
		PasswordHash: string(hash),
		FullName:     s.config.AdminName,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}
	s.logger.Info("seeded default admin", zap.String("email", admin.Email))
	return nil
}
