package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
)

var ErrProfileNotFound = errors.New("user profile not found")

type ProfileService interface {
	GetProfile(ctx context.Context, externalUserID string) (*model.UserProfile, error)
	SaveProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error)
}

type profileServiceImpl struct {
	userRepo repository.UserProfileRepository
}

func NewProfileService(
	userRepo repository.UserProfileRepository,
) ProfileService {
	return &profileServiceImpl{
		userRepo: userRepo,
	}
}

func (s *profileServiceImpl) GetProfile(ctx context.Context, externalUserID string) (*model.UserProfile, error) {
	profile, err := s.userRepo.FindByExternalID(ctx, externalUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return profile, nil
}

func (s *profileServiceImpl) SaveProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	if err := s.userRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	return s.userRepo.FindByExternalID(ctx, profile.ExternalUserID)
}
