package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
	UserStatusPending = "pending"

	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

var (
	MessageSuccessRegister         = "register success"
	MessageSuccessLogin            = "login success"
	MessageSuccessGetDetail        = "get user detail success"
	MessageSuccessUpdateUser       = "update user success"
	MessageSuccessSendVerification = "verification email sent"
	MessageSuccessVerify           = "email verified"
	MessageSuccessForgotPassword   = "reset password email sent"
	MessageSuccessResetPassword    = "password reset success"
	MessageSuccessGoogleLoginURL   = "google login url generated"

	MessageFailedRegister         = "failed to register"
	MessageFailedLogin            = "failed to login"
	MessageFailedGetDetail        = "failed to get user detail"
	MessageFailedUpdateUser       = "failed to update user"
	MessageFailedSendVerification = "failed to send verification email"
	MessageFailedVerify           = "failed to verify email"
	MessageFailedForgotPassword   = "failed to send reset password email"
	MessageFailedResetPassword    = "failed to reset password"
	MessageFailedGoogleLogin      = "failed to login with google"

	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyExists     = errors.New("email already exists")
	ErrCredentialsNotMatched  = errors.New("credentials not matched")
	ErrAccountBlocked         = errors.New("account is blocked")
	ErrAccountNotActive       = errors.New("account is not active yet")
	ErrInvalidRole            = errors.New("invalid role")
	ErrInvalidUserStatus      = errors.New("invalid user status")
	ErrAlreadyVerified        = errors.New("email already verified")
	ErrPasswordLoginDisabled  = errors.New("account uses an external login provider")
	ErrGoogleEmailNotVerified = errors.New("google email not verified")
	ErrInvalidOAuthState      = errors.New("invalid oauth state")
)

type (
	RegisterRequest struct {
		Name     string `json:"name" validate:"required,min=2"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Phone    string `json:"phone" validate:"omitempty,min=8"`
		Address  string `json:"address"`
		Role     string `json:"role" validate:"required,oneof=farmer buyer"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string       `json:"token"`
		Role  string       `json:"role"`
		User  UserResponse `json:"user"`
	}

	UserResponse struct {
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		Email          string    `json:"email"`
		Phone          string    `json:"phone,omitempty"`
		Address        string    `json:"address,omitempty"`
		ProfilePicture string    `json:"profile_picture,omitempty"`
		Role           string    `json:"role"`
		Status         string    `json:"status"`
		AuthProvider   string    `json:"auth_provider"`
		IsVerified     bool      `json:"is_verified"`
		CreatedAt      time.Time `json:"created_at"`
	}

	UpdateUserRequest struct {
		Name           string                `json:"name" form:"name" validate:"omitempty,min=2"`
		Phone          string                `json:"phone" form:"phone" validate:"omitempty,min=8"`
		Address        string                `json:"address" form:"address"`
		ProfilePicture *multipart.FileHeader `json:"-" form:"profile_picture"`
	}

	SendVerificationRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}

	GoogleLoginURLResponse struct {
		URL string `json:"url"`
	}

	GoogleUserInfo struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
)

func IsValidUserStatus(status string) bool {
	switch status {
	case UserStatusActive, UserStatusBlocked, UserStatusPending:
		return true
	}
	return false
}

// InitialUserStatus is the status a freshly registered account starts in.
// Farmers wait for admin approval before they can list waste.
func InitialUserStatus(role string) string {
	if role == RoleFarmer {
		return UserStatusPending
	}
	return UserStatusActive
}
