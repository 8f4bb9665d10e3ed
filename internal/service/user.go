package service

import (
	"context"
	"errors"
	"strings"

	"tush00nka/chathub/internal/model"
	"tush00nka/chathub/internal/pkg/apperror"
	"tush00nka/chathub/internal/pkg/auth"
	"tush00nka/chathub/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
	tokens   *auth.Manager
}

func NewUserService(userRepo repository.UserRepository, tokens *auth.Manager) UserService {
	return &userService{userRepo: userRepo, tokens: tokens}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	// Валидация данных перед созданием
	if username == "" || email == "" || password == "" {
		return nil, apperror.Validation("Username, email and password are required")
	}

	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, apperror.Internal("failed to check username", err)
	}
	if exists {
		return nil, apperror.Conflict("User with username already exists")
	}
	exists, err = s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.Internal("failed to check email", err)
	}
	if exists {
		return nil, apperror.Conflict("User with email already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &model.User{Username: username, Email: email, Password: hash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.Internal("failed to create user", err)
	}
	return s.issue(user)
}

func (s *userService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid user credentials")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, apperror.Unauthorized("Invalid user credentials")
	}
	return s.issue(user)
}

func (s *userService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}
	return &AuthResult{User: user.Profile(), AccessToken: token}, nil
}
