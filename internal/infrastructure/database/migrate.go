package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Permission names checked by the admin routes
const (
	PermViewDashboard   = "view-dashboard"
	PermManageMenu      = "manage-menu"
	PermManageOrders    = "manage-orders"
	PermManageCoupons   = "manage-coupons"
	PermManageCustomers = "manage-customers"
	PermManageSettings  = "manage-settings"
	PermViewReports     = "view-reports"
)

// Models lists every persisted entity in migration order
func Models() []interface{} {
	return []interface{}{
		// Staff entities
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Menu entities
		&entity.Category{},
		&entity.MenuItem{},
		&entity.AddOn{},

		// Diner entities
		&entity.Customer{},
		&entity.CouponType{},
		&entity.Coupon{},
		&entity.CouponUsage{},

		// Transaction entities
		&entity.Order{},
		&entity.OrderItem{},
		&entity.PaymentRecord{},

		// System entities
		&entity.IdempotencyKey{},
		&entity.GlobalSetting{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData seeds roles, permissions, coupon types, billing settings
// and the admin user configured through ADMIN_EMAIL / ADMIN_PASSWORD.
func SeedDefaultData(db *gorm.DB) error {
	log.Println("Seeding default data...")

	permissionNames := []string{
		PermViewDashboard,
		PermManageMenu,
		PermManageOrders,
		PermManageCoupons,
		PermManageCustomers,
		PermManageSettings,
		PermViewReports,
	}
	for _, name := range permissionNames {
		if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&entity.Permission{Name: name}).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", name, err)
		}
	}

	// Reload permissions with IDs
	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return err
	}

	staffAllowed := map[string]bool{
		PermViewDashboard: true,
		PermManageMenu:    true,
		PermManageOrders:  true,
	}
	var staffPerms []entity.Permission
	for _, p := range allPermissions {
		if staffAllowed[p.Name] {
			staffPerms = append(staffPerms, p)
		}
	}

	if err := seedRole(db, entity.RoleAdmin, allPermissions); err != nil {
		return err
	}
	if err := seedRole(db, entity.RoleStaff, staffPerms); err != nil {
		return err
	}

	for _, name := range []enum.CouponTypeName{enum.CouponTypeWelcome, enum.CouponTypeLoyalty, enum.CouponTypeCampaign} {
		if err := db.Where(entity.CouponType{Name: name}).FirstOrCreate(&entity.CouponType{Name: name}).Error; err != nil {
			return fmt.Errorf("seed coupon type %s: %w", name, err)
		}
	}

	defaults := entity.DefaultGlobalSettings()
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoNothing: true,
	}).Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	seedAdmin(db)

	log.Println("Default data seeding completed")
	return nil
}

func seedRole(db *gorm.DB, name string, permissions []entity.Permission) error {
	var role entity.Role
	if err := db.Where("name = ?", name).First(&role).Error; err == nil {
		return nil
	}
	role = entity.Role{Name: name, Permissions: permissions}
	if err := db.Create(&role).Error; err != nil {
		return fmt.Errorf("seed role %s: %w", name, err)
	}
	return nil
}

func seedAdmin(db *gorm.DB) {
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail == "" || adminPassword == "" {
		return
	}

	var existingAdmin entity.User
	if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err == nil {
		log.Printf("Admin user already exists: %s", adminEmail)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Warning: failed to hash admin password: %v", err)
		return
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		log.Printf("Warning: admin role missing: %v", err)
		return
	}

	if adminName == "" {
		adminName = "Restaurant Admin"
	}
	firstName, lastName, _ := strings.Cut(adminName, " ")

	adminUser := entity.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     adminEmail,
		Password:  string(hashedPassword),
		IsActive:  true,
		Roles:     []entity.Role{adminRole},
	}
	if err := db.Create(&adminUser).Error; err != nil {
		log.Printf("Warning: failed to create admin user: %v", err)
		return
	}
	log.Printf("Admin user created: %s", adminEmail)
}
