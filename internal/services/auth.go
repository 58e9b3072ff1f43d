package services

import (
	"errors"
	"strings"
	"time"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/config"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TokenIssuer = "taskify-backend"

type AuthService interface {
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
	GenerateTokens(db *gorm.DB, userID uuid.UUID) (access string, refresh string, err error)
	RefreshTokens(db *gorm.DB, refreshToken string) (access string, refresh string, err error)
	RevokeToken(db *gorm.DB, refreshToken string) error
}

type AuthServiceImpl struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(cfg config.AuthConfig) *AuthServiceImpl {
	return &AuthServiceImpl{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

// LoginUser resolves credentials to a user. Wrong email and wrong password
// both come back as ErrUnauthenticated.
func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrUnauthenticated
	}
	return &user, nil
}

func (s *AuthServiceImpl) GenerateTokens(db *gorm.DB, userID uuid.UUID) (string, string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     TokenIssuer,
		"iat":     now.Unix(),
		"exp":     now.Add(s.accessTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}

	refreshToken := uuid.Must(uuid.NewV4())
	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.refreshTTL),
	}
	if err := db.Create(&token).Error; err != nil {
		return "", "", err
	}

	return accessToken, refreshToken.String(), nil
}

// RefreshTokens rotates the refresh token: the presented one is consumed and
// a fresh pair is issued. Expired or unknown tokens fail as unauthenticated.
func (s *AuthServiceImpl) RefreshTokens(db *gorm.DB, refreshToken string) (string, string, error) {
	tokenID, err := uuid.FromString(refreshToken)
	if err != nil {
		return "", "", apperrors.ErrUnauthenticated
	}

	var token models.Token
	err = db.Where("refresh_token = ? AND expires_at > ?", tokenID, time.Now()).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperrors.ErrUnauthenticated
		}
		return "", "", err
	}

	access, refresh, err := s.GenerateTokens(db, token.UserID)
	if err != nil {
		return "", "", err
	}

	if err := db.Delete(&token).Error; err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	tokenID, err := uuid.FromString(refreshToken)
	if err != nil {
		return apperrors.ErrUnauthenticated
	}
	return db.Where("refresh_token = ?", tokenID).Delete(&models.Token{}).Error
}
