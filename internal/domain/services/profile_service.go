package services

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
	"github.com/anjerodev/dotenv/internal/validations"
	apperrors "github.com/anjerodev/dotenv/pkg/errors"
	"github.com/anjerodev/dotenv/pkg/logger"
)

type ProfileService struct {
	profileRepo repositories.ProfileRepository
	storage     AvatarStorage
}

func NewProfileService(profileRepo repositories.ProfileRepository, storage AvatarStorage) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, storage: storage}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*entities.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("profile not found")
	}

	if profile.AvatarKey != "" {
		profile.AvatarURL = s.storage.PublicURL(profile.AvatarKey)
	}

	return profile, nil
}

// Update upserts the provided fields only; nil means leave untouched.
func (s *ProfileService) Update(ctx context.Context, userID string, username, website *string) error {
	if err := validations.Profile(username, website); err != nil {
		return err
	}

	profile := &entities.Profile{ID: userID}
	if username != nil {
		profile.Username = *username
	}
	if website != nil {
		profile.Website = *website
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		logger.Error("failed to update profile",
			zap.String("user_id", userID), zap.Error(err))
		return apperrors.NewInternalError("Error updating the profile.")
	}

	return nil
}

// UpdateAvatar stores the image in the avatars bucket keyed by user id
// and points the profile at it. Returns the public URL.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := s.storage.Upload(ctx, userID, reader, size, contentType); err != nil {
		logger.Error("failed to upload avatar",
			zap.String("user_id", userID), zap.Error(err))
		return "", apperrors.NewInternalError("Error uploading the avatar.")
	}

	if err := s.profileRepo.SetAvatar(ctx, userID, userID); err != nil {
		return "", apperrors.NewInternalError("Error updating the profile.")
	}

	return s.storage.PublicURL(userID), nil
}
