package models

import "time"

// Session binds an issued access token to the authenticated identity.
type Session struct {
	ID        string      `json:"id"`
	User      UserProfile `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Claims is the request identity placed on the gin context by the auth middleware.
type Claims struct {
	SessionID string
	UserID    string
	Username  string
	Role      UserRole
	Name      string
	Email     string
}

// ClaimsFromSession projects a session onto request claims.
func ClaimsFromSession(s *Session) *Claims {
	return &Claims{
		SessionID: s.ID,
		UserID:    s.User.ID,
		Username:  s.User.Username,
		Role:      s.User.Role,
		Name:      s.User.Name,
		Email:     s.User.Email,
	}
}
