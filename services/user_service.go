package services

import (
	"context"

	"saif-gifts/models"

	"go.uber.org/zap"
)

type UserService struct {
	users UserStore
	log   *zap.Logger
}

func NewUserService(users UserStore, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) GetAllUsers(ctx context.Context, page, limit int) (*models.PaginationResponse, error) {
	page, limit = normalizePage(page, limit)

	users, totalItems, err := s.users.FindAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return paginated("Users retrieved successfully", users, page, limit, totalItems), nil
}

func (s *UserService) UpdateRole(ctx context.Context, actorID, userID int, role string) error {
	if role != models.RoleCustomer && role != models.RoleAdmin {
		return models.NewValidationError("role", "must be customer or admin")
	}
	if actorID == userID && role != models.RoleAdmin {
		return models.NewValidationError("role", "admins cannot demote themselves")
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.log.Info("user role updated", zap.Int("user_id", userID), zap.String("role", role), zap.Int("by", actorID))
	return nil
}
