package database

import (
	"testing"

	"github.com/sangkips/tableorder-api/internal/config"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestSeedDefaultData_Idempotent(t *testing.T) {
	viper.Set("ADMIN_EMAIL", "owner@cafe.test")
	viper.Set("ADMIN_PASSWORD", "s3cret-pass")
	viper.Set("ADMIN_NAME", "Cafe Owner")
	t.Cleanup(func() {
		viper.Set("ADMIN_EMAIL", "")
		viper.Set("ADMIN_PASSWORD", "")
		viper.Set("ADMIN_NAME", "")
	})

	db := newTestDB(t)
	require.NoError(t, SeedDefaultData(db))
	require.NoError(t, SeedDefaultData(db))

	var settingsCount int64
	db.Model(&entity.GlobalSetting{}).Count(&settingsCount)
	assert.Equal(t, int64(len(entity.DefaultGlobalSettings())), settingsCount)

	var couponTypes int64
	db.Model(&entity.CouponType{}).Count(&couponTypes)
	assert.Equal(t, int64(3), couponTypes)

	var staff entity.Role
	require.NoError(t, db.Preload("Permissions").First(&staff, "name = ?", entity.RoleStaff).Error)
	assert.Len(t, staff.Permissions, 3)

	var admin entity.User
	require.NoError(t, db.Preload("Roles.Permissions").First(&admin, "email = ?", "owner@cafe.test").Error)
	assert.Equal(t, "Cafe", admin.FirstName)
	assert.Equal(t, "Owner", admin.LastName)
	assert.True(t, admin.IsActive)
	assert.True(t, admin.HasRole(entity.RoleAdmin))
	assert.True(t, admin.HasPermission(PermManageSettings))

	var users int64
	db.Model(&entity.User{}).Count(&users)
	assert.Equal(t, int64(1), users)
}

func TestSeedDefaultData_KeepsConfiguredSettings(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&entity.GlobalSetting{
		SettingKey:   "cgst_rate",
		SettingValue: "9",
		SettingType:  "number",
	}).Error)

	require.NoError(t, SeedDefaultData(db))

	var row entity.GlobalSetting
	require.NoError(t, db.First(&row, "setting_key = ?", "cgst_rate").Error)
	assert.Equal(t, "9", row.SettingValue)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "mysql"}, false)
	assert.Error(t, err)
}
