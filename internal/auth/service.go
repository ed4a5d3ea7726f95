// Package auth handles coach account authentication: bcrypt password
// verification and signed JWT access tokens.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/coachforge/coachforge-backend/internal/models"
	"github.com/coachforge/coachforge-backend/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailAlreadyExists is returned when email is already registered
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrCoachNotFound is returned when a coach is not found
	ErrCoachNotFound = errors.New("coach not found")
)

// Service handles authentication operations
type Service struct {
	coaches repository.CoachRepository
	jwt     *JWTService
}

// NewService creates a new auth service
func NewService(coaches repository.CoachRepository, jwtSecret string) *Service {
	return &Service{
		coaches: coaches,
		jwt:     NewJWTService(jwtSecret, "coachforge"),
	}
}

// SignUp registers a new coach account
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (*models.Coach, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.coaches.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	coach := &models.Coach{
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		Timezone:     "UTC",
	}
	if err := s.coaches.Create(ctx, coach); err != nil {
		return nil, err
	}

	return coach, nil
}

// Login authenticates a coach and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (*models.Coach, string, error) {
	coach, err := s.coaches.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if coach == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !CheckPassword(password, coach.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(coach.ID.String(), coach.Email)
	if err != nil {
		return nil, "", err
	}

	return coach, token, nil
}

// ValidateAccessToken validates a token and returns the coach it belongs to
func (s *Service) ValidateAccessToken(ctx context.Context, token string) (*models.Coach, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	coachID, err := uuid.Parse(claims.CoachID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	coach, err := s.coaches.GetByID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if coach == nil {
		return nil, ErrCoachNotFound
	}

	return coach, nil
}
