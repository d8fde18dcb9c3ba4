package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var ErrMissingTelegramID = errors.New("telegram_id is required")

// UserService defines the interface for user business logic
type UserService interface {
	// Register returns the user for telegramID, creating it when absent.
	// created reports whether a new row was written.
	Register(ctx context.Context, telegramID int64, username, firstName string) (user *domain.User, created bool, err error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Register(ctx context.Context, telegramID int64, username, firstName string) (*domain.User, bool, error) {
	if telegramID <= 0 {
		return nil, false, ErrMissingTelegramID
	}

	existing, err := s.userRepo.FindByTelegramID(ctx, telegramID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &domain.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same id.
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			existing, findErr := s.userRepo.FindByTelegramID(ctx, telegramID)
			if findErr != nil {
				return nil, false, fmt.Errorf("failed to load existing user: %w", findErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	return user, true, nil
}
