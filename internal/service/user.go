package service

import (
	"context"
	"errors"

	"chatsphere/backend/internal/domain"
	"chatsphere/backend/internal/model"
	"chatsphere/backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, user *model.User) error {
	if user.Username == "" {
		return domain.NewUserError("username is required")
	}
	if user.Email == "" {
		return domain.NewUserError("email is required")
	}
	if user.Password == "" {
		return domain.NewUserError("password is required")
	}

	return s.userRepo.Create(ctx, user)
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewUserError("user %d not found", id)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewUserError("user %q not found", username)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewUserError("user %q not found", email)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, user *model.User) error {
	existing, err := s.GetUserByID(ctx, user.ID)
	if err != nil {
		return err
	}

	// Обновляем только разрешенные поля
	existing.DisplayName = user.DisplayName
	existing.ProfilePictureKey = user.ProfilePictureKey

	return s.userRepo.Update(ctx, existing)
}

func (s *userService) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.userRepo.UsernameExists(ctx, username)
}

func (s *userService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.userRepo.EmailExists(ctx, email)
}

func (s *userService) SearchUsers(ctx context.Context, prompt string) ([]*model.User, error) {
	return s.userRepo.Search(ctx, prompt)
}
