package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
	"github.com/anjerodev/dotenv/internal/validations"
	apperrors "github.com/anjerodev/dotenv/pkg/errors"
	"github.com/anjerodev/dotenv/pkg/logger"
)

const authCodePrefix = "auth:code:"

// AuthService owns registration, the login-code exchange, session
// lifecycle and the expired-session sweep.
type AuthService struct {
	userRepo        repositories.UserRepository
	sessionRepo     repositories.SessionRepository
	profileRepo     repositories.ProfileRepository
	logRepo         repositories.LogRepository
	codes           RedisClient
	sessionDuration time.Duration
	codeDuration    time.Duration
}

func NewAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	profileRepo repositories.ProfileRepository,
	logRepo repositories.LogRepository,
	codes RedisClient,
	sessionDuration, codeDuration time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		sessionRepo:     sessionRepo,
		profileRepo:     profileRepo,
		logRepo:         logRepo,
		codes:           codes,
		sessionDuration: sessionDuration,
		codeDuration:    codeDuration,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, username string) (*entities.User, error) {
	if err := validations.Register(email, password, username); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewBadRequestError("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("Error creating the account.")
	}

	user := &entities.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(hash),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.Error("failed to create user", zap.Error(err))
		return nil, apperrors.NewInternalError("Error creating the account.")
	}

	if err := s.profileRepo.Upsert(ctx, &entities.Profile{
		ID:       user.ID,
		Username: username,
	}); err != nil {
		logger.Error("failed to create profile",
			zap.String("user_id", user.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("Error creating the account.")
	}

	return user, nil
}

// Login checks the credentials and hands back a one-time code. The
// caller completes the flow through the callback endpoint, which trades
// the code for a session cookie.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	code := uuid.NewString()
	if err := s.codes.Set(ctx, authCodePrefix+code, user.ID, s.codeDuration); err != nil {
		logger.Error("failed to store login code", zap.Error(err))
		return "", apperrors.NewInternalError("Error signing in.")
	}

	return code, nil
}

// ExchangeCode consumes a one-time login code and opens a session.
// Codes are single-use; the read removes them.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*entities.Session, error) {
	userID, err := s.codes.GetDel(ctx, authCodePrefix+code)
	if err != nil || userID == "" {
		return nil, apperrors.NewUnauthorizedError("invalid or expired code")
	}

	token, err := generateToken()
	if err != nil {
		return nil, apperrors.NewInternalError("Error signing in.")
	}

	session := &entities.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.sessionDuration),
		UpdatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		logger.Error("failed to create session",
			zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.NewInternalError("Error signing in.")
	}

	return session, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid session")
	}

	if time.Now().After(session.ExpiresAt) {
		s.sessionRepo.Delete(ctx, token)
		return nil, apperrors.NewUnauthorizedError("session expired")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid session")
	}

	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return apperrors.NewInternalError("Error signing out.")
	}
	return nil
}

// Sweep is the scheduled maintenance run: drop expired sessions and
// record a heartbeat so the deployment is seen as active.
func (s *AuthService) Sweep(ctx context.Context) error {
	sweepErr := s.sessionRepo.DeleteExpired(ctx)
	beatErr := s.logRepo.Heartbeat(ctx)

	if err := errors.Join(sweepErr, beatErr); err != nil {
		logger.Error("maintenance sweep failed", zap.Error(err))
		return apperrors.NewInternalError("Error running maintenance.")
	}

	return nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
