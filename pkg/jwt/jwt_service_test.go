package jwt

import (
	"testing"
	"time"

	"AgriWaste-Marketplace/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseUserToken(t *testing.T) {
	svc := NewJWTService("secret")

	token, err := svc.GenerateTokenUser("user-1", domain.RoleFarmer)
	require.NoError(t, err)

	id, role, err := svc.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, domain.RoleFarmer, role)
}

func TestGetUserIDByTokenRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("other").GenerateTokenUser("user-1", domain.RoleBuyer)
	require.NoError(t, err)

	_, _, err = NewJWTService("secret").GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestGetUserIDByTokenExpired(t *testing.T) {
	claims := jwtUserClaim{
		"user-1",
		domain.RoleBuyer,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    defaultIssuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, err = NewJWTService("secret").GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTemporaryToken(t *testing.T) {
	svc := NewJWTService("secret")

	token, err := svc.GenerateTemporaryToken(map[string]any{"email": "a@b.c"}, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateTemporaryToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", claims["email"])

	expired, err := svc.GenerateTemporaryToken(map[string]any{"email": "a@b.c"}, -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateTemporaryToken(expired)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}
