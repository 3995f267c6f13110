package repository

import (
	"context"

	"github.com/sangkips/tableorder-api/internal/domain/entity"
)

// SettingsRepository defines the interface for global settings data access
type SettingsRepository interface {
	List(ctx context.Context) ([]entity.GlobalSetting, error)
	GetByKeys(ctx context.Context, keys []string) ([]entity.GlobalSetting, error)
	// Upsert inserts or updates rows by setting_key in one transaction
	Upsert(ctx context.Context, settings []entity.GlobalSetting) error
	// EnsureDefaults inserts rows whose keys are missing and leaves existing values alone
	EnsureDefaults(ctx context.Context, settings []entity.GlobalSetting) error
}
