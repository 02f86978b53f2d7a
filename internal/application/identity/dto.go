package identity

import (
	"time"

	"github.com/ecom/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string // security answer for the forgot-password flow
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// AuthResult contains the token pair and user info issued on login
type AuthResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains user information safe to return to clients.
// Password and answer hashes never appear here.
type UserInfo struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Phone       string
	Address     string
	Role        string
	Status      string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// ForgotPasswordInput contains the input for the security-answer reset flow
type ForgotPasswordInput struct {
	Email       string
	Answer      string
	NewPassword string
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the rotated token pair
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string        // JWT ID of the presented access token
	TokenTTL time.Duration // remaining validity, bounds the blacklist entry
}

// UpdateProfileInput contains the input for profile updates.
// Nil fields are left unchanged; email is immutable.
type UpdateProfileInput struct {
	UserID   uuid.UUID
	Name     *string
	Password *string
	Phone    *string
	Address  *string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Address:     u.Address,
		Role:        string(u.Role),
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
