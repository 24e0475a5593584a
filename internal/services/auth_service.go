package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"brainbin/internal/auth"
	"brainbin/internal/config"
	"brainbin/internal/email"
	"brainbin/internal/logger"
	"brainbin/internal/models"
	"brainbin/internal/repositories"
	"brainbin/internal/services/dto"
	"brainbin/pkg/apperrors"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService struct {
	users     repositories.UserRepository
	email     email.Provider
	secret    string
	ttl       time.Duration
	verifyURL string
}

func NewAuthService(users repositories.UserRepository, mailer email.Provider, cfg *config.Config) *AuthService {
	return &AuthService{
		users:     users,
		email:     mailer,
		secret:    cfg.JWT.Secret,
		ttl:       time.Duration(cfg.JWT.TTL) * time.Minute,
		verifyURL: cfg.Email.VerifyURL,
	}
}

// Register creates the account and sends a verification email. The mail
// failure is logged but does not fail registration.
func (s *AuthService) Register(req dto.RegisterRequest) (*dto.UserResponse, error) {
	if !auth.ValidatePasswordStrength(req.Password) {
		return nil, apperrors.ErrWeakPassword("Password must be at least 8 characters and contain a letter and a digit")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	verifyToken, err := randomToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         req.Name,
		VerifyToken:  verifyToken,
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists()
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to create user", http.StatusInternalServerError)
	}

	msg := email.VerificationEmail(user.Email, fmt.Sprintf("%s?token=%s", s.verifyURL, verifyToken))
	if err := s.email.Send(msg); err != nil {
		logger.GetLogger().Warn("Failed to send verification email", "email", user.Email, "error", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// Login checks credentials and issues an access/refresh token pair.
func (s *AuthService) Login(req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to look up user", http.StatusInternalServerError)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(user.ID, now); err != nil {
		logger.GetLogger().Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	return s.issueTokens(user)
}

// Refresh rotates the refresh token: the presented token is revoked and a
// new pair is issued.
func (s *AuthService) Refresh(req dto.RefreshRequest) (*dto.TokenResponse, error) {
	tokenHash := auth.HashRefreshToken(req.RefreshToken)

	stored, err := s.users.FindRefreshToken(tokenHash)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to look up refresh token", http.StatusInternalServerError)
	}

	if !stored.IsActive(time.Now()) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.users.FindByID(stored.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if err := s.users.RevokeRefreshToken(tokenHash); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to rotate refresh token", http.StatusInternalServerError)
	}

	return s.issueTokens(user)
}

// Logout revokes the presented refresh token, or all of the user's
// tokens when none is given.
func (s *AuthService) Logout(userID uuid.UUID, req dto.LogoutRequest) error {
	if req.RefreshToken != "" {
		if err := s.users.RevokeRefreshToken(auth.HashRefreshToken(req.RefreshToken)); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to revoke token", http.StatusInternalServerError)
		}
		return nil
	}
	if err := s.users.RevokeUserRefreshTokens(userID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to revoke tokens", http.StatusInternalServerError)
	}
	return nil
}

// VerifyEmail confirms the account behind a verification token.
func (s *AuthService) VerifyEmail(token string) error {
	if token == "" {
		return apperrors.ErrInvalidToken
	}
	user, err := s.users.FindByVerifyToken(token)
	if err != nil {
		return apperrors.ErrInvalidToken
	}
	if err := s.users.MarkVerified(user.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to verify user", http.StatusInternalServerError)
	}
	return nil
}

// Me returns the profile for an authenticated user.
func (s *AuthService) Me(userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to load user", http.StatusInternalServerError)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) issueTokens(user *models.User) (*dto.TokenResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, s.secret, s.ttl)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken, refreshHash, err := auth.NewRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.users.CreateRefreshToken(&models.RefreshToken{
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "auth", "Failed to store refresh token", http.StatusInternalServerError)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.ttl.Seconds()),
		User:         toUserResponse(user),
	}, nil
}

func toUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID.String(),
		Email:      user.Email,
		Name:       user.Name,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		LastLogin:  user.LastLoginAt,
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
