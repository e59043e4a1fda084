package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/repository"
	"toolpool-backend/internal/security"
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	emailSvc EmailService
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, emailSvc EmailService) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens, emailSvc: emailSvc}
}

func (s *authService) Signup(ctx context.Context, email, username, phone, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", domain.ErrValidationFailed)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidationFailed)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidationFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:         email,
		Username:      username,
		PhoneNumber:   phone,
		PasswordHash:  string(hash),
		Tier:          domain.TierNone,
		TierGrantedBy: domain.TierGrantedByToolWaiver,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	verifyToken, err := s.tokens.GenerateEmailVerifyToken(user.ID, user.Email)
	if err != nil {
		logger.Error("Failed to generate verification token", "user_id", user.ID, "error", err)
	} else if err := s.emailSvc.SendVerificationEmail(ctx, user.Email, user.Username, verifyToken); err != nil {
		logger.Error("Failed to send verification email", "user_id", user.ID, "error", err)
	}

	logger.Info("User signed up", "user_id", user.ID)
	return user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	if claims.Type != security.TokenTypeEmailVerify {
		return fmt.Errorf("%w: not a verification token", domain.ErrValidationFailed)
	}
	if err := s.userRepo.SetEmailVerified(ctx, claims.UserID); err != nil {
		return err
	}
	logger.Info("Email verified", "user_id", claims.UserID)
	return nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", fmt.Errorf("%w: invalid credentials", domain.ErrAuthenticationRequired)
		}
		return "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", fmt.Errorf("%w: invalid credentials", domain.ErrAuthenticationRequired)
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.EmailVerified, user.IsAdmin)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrAuthenticationRequired, err)
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", fmt.Errorf("%w: not a refresh token", domain.ErrAuthenticationRequired)
	}

	// Re-read the user so role and verification changes take effect on
	// rotation.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", err
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.EmailVerified, user.IsAdmin)
	if err != nil {
		return "", "", err
	}
	newRefresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}
	return access, newRefresh, nil
}
