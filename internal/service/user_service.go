package service

import (
	"context"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*repository.User, error)
	UpdateProfile(ctx context.Context, userID, name, phone string, avatar *string) (*repository.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID, name, phone string, avatar *string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if name != "" {
		user.Name = name
	}
	if phone != "" {
		normalized := normalizeHandle(phone)
		user.Phone = &normalized
	}
	if avatar != nil {
		user.Avatar = avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
