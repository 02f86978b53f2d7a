package identity

import (
	"context"

	"github.com/ecom/backend/internal/domain/identity"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles admin-side account management
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user management service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListUsers returns a paginated list of accounts
func (s *UserService) ListUsers(ctx context.Context, filter shared.Filter) (*shared.Paginated[UserInfo], error) {
	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	infos := make([]UserInfo, len(users))
	for i := range users {
		infos[i] = toUserInfo(&users[i])
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	result := shared.NewPaginated(infos, total, page, filter.Limit())
	return &result, nil
}

// GetUser returns a single account by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	info := toUserInfo(user)
	return &info, nil
}

// PromoteToAdmin grants the admin role to an account
func (s *UserService) PromoteToAdmin(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.ErrNotFound
	}

	if err := user.PromoteToAdmin(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save promoted user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to promote user")
	}

	s.logger.Info("User promoted to admin", zap.String("user_id", id.String()))

	info := toUserInfo(user)
	return &info, nil
}

// DeactivateUser disables an account
func (s *UserService) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return shared.ErrNotFound
	}

	if err := user.Deactivate(); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save deactivated user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to deactivate user")
	}

	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	return nil
}

// UnlockUser clears a lockout before its timer expires
func (s *UserService) UnlockUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return shared.ErrNotFound
	}

	if err := user.Unlock(); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save unlocked user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to unlock user")
	}

	s.logger.Info("User unlocked", zap.String("user_id", id.String()))
	return nil
}
