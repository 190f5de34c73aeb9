package services

import (
	"context"
	"errors"
	"strings"

	"todos-app/backend/internal/apperr"
	"todos-app/backend/internal/models"
	"todos-app/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SignupInput is the payload for account creation.
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthService owns credential verification and the single canonical
// password-hashing path. Nothing else in the codebase calls bcrypt.
type AuthService struct {
	users      repositories.UserRepository
	tokens     *TokenService
	bcryptCost int
}

func NewAuthService(users repositories.UserRepository, tokens *TokenService, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// Signup validates the input, rejects duplicate emails and creates the
// user with a hashed password, returning the record and a session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := checkStruct(in); err != nil {
		return nil, "", err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, "", apperr.ErrConflict
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, "", err
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:             id,
		Name:           in.Name,
		Email:          in.Email,
		Password:       hash,
		ProfilePicture: models.DefaultProfilePicture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and issues a fresh token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !CheckPassword(user.Password, password) {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// HashPassword derives the salted bcrypt hash stored in place of the
// plaintext password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func CheckPassword(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}
