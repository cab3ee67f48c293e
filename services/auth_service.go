package services

import (
	"time"

	"chathub/auth"
	"chathub/domain"
	"chathub/errors"
	"chathub/repositories"
)

type IAuthService interface {
	Register(req auth.RegisterRequest) (domain.User, error)
	Login(email, password string) (string, domain.User, error)
}

type AuthService struct {
	users         repositories.IUserRepository
	tokenDuration time.Duration
}

func NewAuthService(users repositories.IUserRepository, tokenDuration time.Duration) *AuthService {
	return &AuthService{users: users, tokenDuration: tokenDuration}
}

// Register validates the request, hashes the password, and persists the
// account.
func (s *AuthService) Register(req auth.RegisterRequest) (domain.User, error) {
	if err := auth.ValidateRegister(req); err != nil {
		return domain.User{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, err
	}
	return s.users.CreateUser(req.Username, req.Email, hash)
}

// Login checks credentials and issues a signed token carrying the
// user's id and username. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (string, domain.User, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	ok, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !ok {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.Roles, s.tokenDuration)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}
