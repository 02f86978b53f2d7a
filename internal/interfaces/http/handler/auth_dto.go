package handler

import (
	"time"

	"github.com/ecom/backend/internal/application/identity"
)

// RegisterRequest is the request body for account registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	Answer   string `json:"answer" binding:"required,max=120"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest is the request body for the security-answer reset
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Answer      string `json:"answer" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// RefreshTokenRequest is the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest is the request body for profile updates.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
	Address  *string `json:"address" binding:"omitempty,max=255"`
}

// ChangePasswordRequest is the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// UserResponse is the wire representation of a user account
type UserResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LoginResponse carries the issued token pair and the account
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// TokenPairResponse carries a rotated token pair
type TokenPairResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toUserResponse(info *identity.UserInfo) UserResponse {
	return UserResponse{
		ID:          info.ID.String(),
		Name:        info.Name,
		Email:       info.Email,
		Phone:       info.Phone,
		Address:     info.Address,
		Role:        info.Role,
		Status:      info.Status,
		CreatedAt:   info.CreatedAt,
		LastLoginAt: info.LastLoginAt,
	}
}
