package repository

import (
	"context"

	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// List retrieves every setting ordered by key
func (r *settingsRepository) List(ctx context.Context) ([]entity.GlobalSetting, error) {
	var settings []entity.GlobalSetting
	err := r.db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error
	return settings, err
}

// GetByKeys retrieves the settings with the given keys; missing keys are skipped
func (r *settingsRepository) GetByKeys(ctx context.Context, keys []string) ([]entity.GlobalSetting, error) {
	var settings []entity.GlobalSetting
	if len(keys) == 0 {
		return settings, nil
	}
	err := r.db.WithContext(ctx).Where("setting_key IN ?", keys).Find(&settings).Error
	return settings, err
}

// Upsert writes settings by key in one transaction
func (r *settingsRepository) Upsert(ctx context.Context, settings []entity.GlobalSetting) error {
	if len(settings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "setting_type", "description", "updated_at"}),
		}).Create(&settings).Error
	})
}

// EnsureDefaults inserts missing keys without touching configured values
func (r *settingsRepository) EnsureDefaults(ctx context.Context, settings []entity.GlobalSetting) error {
	if len(settings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoNothing: true,
	}).Create(&settings).Error
}
