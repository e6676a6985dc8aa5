package domain

import (
	"errors"
)

const (
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
)

var (
	MessageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageAccountBlocked       = "account is blocked"

	ErrParseUUID       = errors.New("failed to parse UUID")
	ErrUserNotAllowed  = errors.New("user not allowed")
	ErrTokenNotFound   = errors.New("failed to token not found")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrVersionConflict = errors.New("record was modified by another request")
)

func IsValidRole(role string) bool {
	switch role {
	case RoleFarmer, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}
