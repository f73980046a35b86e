package dto

import "github.com/noah-isme/tutor-booking-api/internal/models"

// LoginRequest carries credentials; all three fields must match one user.
type LoginRequest struct {
	Username string          `json:"username" validate:"required"`
	Password string          `json:"password" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required"`
	IP       string          `json:"-"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	User        models.UserProfile `json:"user"`
	AccessToken string             `json:"accessToken"`
	ExpiresIn   int64              `json:"expiresIn"`
}
