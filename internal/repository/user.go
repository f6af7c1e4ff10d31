package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-backend/internal/model"
)

type UserProfileRepository interface {
	FindByExternalID(ctx context.Context, externalUserID string) (*model.UserProfile, error)
	Upsert(ctx context.Context, profile *model.UserProfile) error
}

type userProfileRepoImpl struct {
	db *gorm.DB
}

func NewUserProfileRepository(db *gorm.DB) UserProfileRepository {
	return &userProfileRepoImpl{
		db: db,
	}
}

func (r *userProfileRepoImpl) FindByExternalID(ctx context.Context, externalUserID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.WithContext(ctx).
		Where("external_user_id = ?", externalUserID).
		First(&profile).Error

	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *userProfileRepoImpl) Upsert(ctx context.Context, profile *model.UserProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"email":            profile.Email,
			"first_name":       profile.FirstName,
			"last_name":        profile.LastName,
			"shipping_address": profile.ShippingAddress,
			"updated_at":       time.Now(),
		}),
	}).Create(profile).Error
}
