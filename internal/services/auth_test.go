package services_test

import (
	"testing"
	"time"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/config"
	"taskify/backend/internal/models"
	"taskify/backend/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		BCryptCost:      bcrypt.MinCost,
	}
}

func TestRegisterUser_HashesPasswordAndLowercasesEmail(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewRegisterService()

	user, err := svc.RegisterUser(db, services.RegistrationRequest{
		Email:       "  Alice@Example.COM ",
		Password:    "sup3r-Secret!",
		DisplayName: "Alice",
	}, bcrypt.MinCost)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "sup3r-Secret!", user.PasswordHash)
	assert.True(t, services.VerifyPassword(user.PasswordHash, "sup3r-Secret!"))
}

func TestRegisterUser_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewRegisterService()

	_, err := svc.RegisterUser(db, services.RegistrationRequest{
		Email:    "alice@example.com",
		Password: "sup3r-Secret!",
	}, bcrypt.MinCost)
	require.NoError(t, err)

	_, err = svc.RegisterUser(db, services.RegistrationRequest{
		Email:    "ALICE@example.com",
		Password: "other-Secret!",
	}, bcrypt.MinCost)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLoginUser(t *testing.T) {
	db := newTestDB(t)
	registerSvc := services.NewRegisterService()
	authSvc := services.NewAuthService(testAuthConfig())

	registered, err := registerSvc.RegisterUser(db, services.RegistrationRequest{
		Email:    "alice@example.com",
		Password: "sup3r-Secret!",
	}, bcrypt.MinCost)
	require.NoError(t, err)

	user, err := authSvc.LoginUser(db, "Alice@Example.com", "sup3r-Secret!")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = authSvc.LoginUser(db, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = authSvc.LoginUser(db, "nobody@example.com", "sup3r-Secret!")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated,
		"unknown email and wrong password must be indistinguishable")
}

func TestGenerateTokens_AccessTokenClaims(t *testing.T) {
	db := newTestDB(t)
	authSvc := services.NewAuthService(testAuthConfig())
	user := createTestUser(t, db, "alice@example.com")

	access, refresh, err := authSvc.GenerateTokens(db, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, refresh)

	token, err := jwt.Parse(access, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["user_id"])
	assert.Equal(t, services.TokenIssuer, claims["iss"])

	var stored models.Token
	require.NoError(t, db.First(&stored, "user_id = ?", user.ID).Error)
	assert.Equal(t, refresh, stored.RefreshToken.String())
}

func TestRefreshTokens_RotatesToken(t *testing.T) {
	db := newTestDB(t)
	authSvc := services.NewAuthService(testAuthConfig())
	user := createTestUser(t, db, "alice@example.com")

	_, refresh, err := authSvc.GenerateTokens(db, user.ID)
	require.NoError(t, err)

	access2, refresh2, err := authSvc.RefreshTokens(db, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEqual(t, refresh, refresh2)

	// The consumed token must not work twice.
	_, _, err = authSvc.RefreshTokens(db, refresh)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestRefreshTokens_Garbage(t *testing.T) {
	db := newTestDB(t)
	authSvc := services.NewAuthService(testAuthConfig())

	_, _, err := authSvc.RefreshTokens(db, "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestRevokeToken(t *testing.T) {
	db := newTestDB(t)
	authSvc := services.NewAuthService(testAuthConfig())
	user := createTestUser(t, db, "alice@example.com")

	_, refresh, err := authSvc.GenerateTokens(db, user.ID)
	require.NoError(t, err)

	require.NoError(t, authSvc.RevokeToken(db, refresh))

	_, _, err = authSvc.RefreshTokens(db, refresh)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
