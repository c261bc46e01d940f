package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/sampleapp/app/models"
	"github.com/shashiranjanraj/sampleapp/app/repositories"
	"github.com/shashiranjanraj/sampleapp/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

type AuthService struct {
	users  *repositories.UserRepository
	signer *auth.Signer
}

func NewAuthService(users *repositories.UserRepository, signer *auth.Signer) *AuthService {
	return &AuthService{users: users, signer: signer}
}

// Register hashes password and stores a new user.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (models.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{Name: name, Email: email, Password: hash, Role: "user"}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}
	return s.signer.GenerateToken(user.ID, user.Role)
}
