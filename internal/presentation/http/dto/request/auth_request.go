package request

// LoginRequest represents a staff login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

// CreateStaffRequest represents a request to add a staff account
type CreateStaffRequest struct {
	FirstName string `json:"firstName" binding:"required,min=2,max=255"`
	LastName  string `json:"lastName" binding:"max=255"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"omitempty,oneof=admin staff"`
}

// SendOTPRequest asks for a login code for a phone at a table
type SendOTPRequest struct {
	Phone       string `json:"phone" binding:"required"`
	TableNumber int    `json:"tableNumber" binding:"required"`
}

// VerifyOTPRequest exchanges a login code for a table session token.
// TableNumber may be left out to use the table the code was sent for.
type VerifyOTPRequest struct {
	Phone       string `json:"phone" binding:"required"`
	Code        string `json:"code" binding:"required"`
	TableNumber int    `json:"tableNumber"`
}
