package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/sangkips/tableorder-api/internal/domain/billing"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// maxTablesCap is the hard upper bound on number_of_tables
const maxTablesCap = 100

// SettingsService handles global settings business logic
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	cache        repository.SettingsCache
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, cache repository.SettingsCache) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		cache:        cache,
	}
}

// Snapshot returns the resolved billing settings and restaurant info.
// Missing or unparsable keys fall back to their defaults and are listed in Defaulted.
func (s *SettingsService) Snapshot(ctx context.Context) (*entity.SettingsSnapshot, error) {
	if cached, err := s.cache.Get(ctx); err == nil {
		return cached, nil
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		log.Printf("settings cache read failed: %v", err)
	}

	rows, err := s.settingsRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := BuildSnapshot(rows)
	if err := s.cache.Set(ctx, snapshot); err != nil {
		log.Printf("settings cache write failed: %v", err)
	}
	return snapshot, nil
}

// rateRangeError returns why a billing rate is out of bounds, or "".
func rateRangeError(key string, d decimal.Decimal) string {
	if key == billing.KeyServiceChargePercentage {
		if d.IsNegative() {
			return "must not be negative"
		}
		return ""
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return "must be between 0 and 100"
	}
	return ""
}

// BuildSnapshot resolves stored rows into a settings snapshot
func BuildSnapshot(rows []entity.GlobalSetting) *entity.SettingsSnapshot {
	byKey := make(map[string]*entity.GlobalSetting, len(rows))
	for i := range rows {
		byKey[rows[i].SettingKey] = &rows[i]
	}

	// Stored values the engine would reject are treated like missing ones so
	// a bad row cannot block every bill.
	number := func(key string) *decimal.Decimal {
		row, ok := byKey[key]
		if !ok {
			return nil
		}
		d, err := row.Decimal()
		if err != nil {
			log.Printf("ignoring setting %s: %v", key, err)
			return nil
		}
		if msg := rateRangeError(key, d); msg != "" {
			log.Printf("ignoring setting %s=%s: %s", key, d.String(), msg)
			return nil
		}
		return &d
	}
	boolean := func(key string) *bool {
		row, ok := byKey[key]
		if !ok {
			return nil
		}
		b, err := row.Bool()
		if err != nil {
			log.Printf("ignoring setting %s: %v", key, err)
			return nil
		}
		return &b
	}

	settings, defaulted := billing.ResolveSettings(billing.PartialSettings{
		CGSTRate:                number(billing.KeyCGSTRate),
		SGSTRate:                number(billing.KeySGSTRate),
		ServiceChargeEnabled:    boolean(billing.KeyServiceChargeEnabled),
		ServiceChargePercentage: number(billing.KeyServiceChargePercentage),
		DefaultGSTRate:          number(billing.KeyDefaultGSTRate),
	})

	restaurant := entity.DefaultRestaurantInfo()
	text := func(key string, dst *string) {
		if row, ok := byKey[key]; ok && strings.TrimSpace(row.SettingValue) != "" {
			*dst = row.SettingValue
		} else {
			defaulted = append(defaulted, key)
		}
	}
	text(entity.KeyRestaurantName, &restaurant.Name)
	text(entity.KeyRestaurantAddress, &restaurant.Address)
	text(entity.KeyRestaurantPhone, &restaurant.Phone)
	text(entity.KeyRestaurantGSTIN, &restaurant.GSTIN)

	if tables := number(entity.KeyNumberOfTables); tables != nil && tables.IsInteger() &&
		tables.IntPart() >= 1 && tables.IntPart() <= maxTablesCap {
		restaurant.NumberOfTables = int(tables.IntPart())
	} else {
		defaulted = append(defaulted, entity.KeyNumberOfTables)
	}

	return &entity.SettingsSnapshot{
		Billing:    settings,
		Restaurant: restaurant,
		Defaulted:  defaulted,
	}
}

// List returns every stored setting row
func (s *SettingsService) List(ctx context.Context) ([]entity.GlobalSetting, error) {
	return s.settingsRepo.List(ctx)
}

// UpdateSettingInput represents one setting to upsert
type UpdateSettingInput struct {
	Key         string
	Value       string
	Type        enum.SettingType
	Description *string
}

// knownSettingTypes pins the type of every key the application reads
var knownSettingTypes = map[string]enum.SettingType{
	billing.KeyServiceChargePercentage: enum.SettingTypeNumber,
	billing.KeyServiceChargeEnabled:    enum.SettingTypeBoolean,
	billing.KeyCGSTRate:                enum.SettingTypeNumber,
	billing.KeySGSTRate:                enum.SettingTypeNumber,
	billing.KeyDefaultGSTRate:          enum.SettingTypeNumber,
	entity.KeyRestaurantName:           enum.SettingTypeString,
	entity.KeyRestaurantAddress:        enum.SettingTypeString,
	entity.KeyRestaurantPhone:          enum.SettingTypeString,
	entity.KeyRestaurantGSTIN:          enum.SettingTypeString,
	entity.KeyNumberOfTables:           enum.SettingTypeNumber,
}

// UpdateSettings validates and upserts settings, then drops the cached snapshot
func (s *SettingsService) UpdateSettings(ctx context.Context, inputs []UpdateSettingInput) ([]entity.GlobalSetting, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewBadRequestError("No settings to update")
	}

	var fieldErrors []apperror.FieldError
	rows := make([]entity.GlobalSetting, 0, len(inputs))
	for _, in := range inputs {
		key := strings.TrimSpace(in.Key)
		settingType := in.Type
		if known, ok := knownSettingTypes[key]; ok {
			if settingType == "" {
				settingType = known
			}
			if settingType != known {
				fieldErrors = append(fieldErrors, apperror.FieldError{Field: key, Message: "must be of type " + string(known)})
				continue
			}
		}
		if key == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "key", Message: "is required"})
			continue
		}
		if !settingType.Valid() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: key, Message: "unknown setting type"})
			continue
		}

		value := strings.TrimSpace(in.Value)
		if msg := validateSettingValue(key, settingType, value); msg != "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: key, Message: msg})
			continue
		}

		rows = append(rows, entity.GlobalSetting{
			SettingKey:   key,
			SettingValue: value,
			SettingType:  settingType,
			Description:  in.Description,
		})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	if err := s.settingsRepo.Upsert(ctx, rows); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("settings cache invalidate failed: %v", err)
	}

	return s.settingsRepo.List(ctx)
}

// validateSettingValue returns an error message, or "" when the value is acceptable.
// Billing bounds match what the bill calculation accepts.
func validateSettingValue(key string, settingType enum.SettingType, value string) string {
	switch settingType {
	case enum.SettingTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return "must be true or false"
		}
		return ""
	case enum.SettingTypeString:
		return ""
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return "must be a number"
	}
	switch key {
	case billing.KeyCGSTRate, billing.KeySGSTRate, billing.KeyDefaultGSTRate, billing.KeyServiceChargePercentage:
		return rateRangeError(key, d)
	case entity.KeyNumberOfTables:
		if !d.IsInteger() || d.LessThan(decimal.NewFromInt(1)) || d.GreaterThan(decimal.NewFromInt(maxTablesCap)) {
			return "must be a whole number between 1 and 100"
		}
	}
	return ""
}
