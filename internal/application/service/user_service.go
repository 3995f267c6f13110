package service

import (
	"context"
	"strings"

	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/pkg/apperror"
	"github.com/sangkips/tableorder-api/pkg/utils"
)

// UserService handles staff account management
type UserService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	permissionRepo repository.PermissionRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
	}
}

// CreateStaffInput represents the input for adding a staff account
type CreateStaffInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// CreateStaff adds an active staff account with a single role
func (s *UserService) CreateStaff(ctx context.Context, input *CreateStaffInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	roleName := input.Role
	if roleName == "" {
		roleName = entity.RoleStaff
	}

	var fieldErrors []apperror.FieldError
	if email == "" || !strings.Contains(email, "@") {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "email", Message: "must be a valid email"})
	}
	if len(input.Password) < 8 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if strings.TrimSpace(input.FirstName) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "firstName", Message: "is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperror.NewFieldError("role", "unknown role")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Password:  hashedPassword,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, err
	}

	return s.userRepo.GetWithRoles(ctx, user.ID)
}

// ListRoles returns all roles with their permissions
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}

// ListPermissions returns all permissions
func (s *UserService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	return s.permissionRepo.List(ctx)
}
