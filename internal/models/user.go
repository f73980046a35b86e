package models

// UserRole represents the three personas served by the API.
type UserRole string

const (
	RoleStudent UserRole = "Student"
	RoleTutor   UserRole = "Tutor"
	RoleCTSV    UserRole = "CTSV"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleCTSV:
		return true
	default:
		return false
	}
}

// User is an account record. Accounts are created by seed data only.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Avatar   string   `json:"avatar,omitempty"`
}

// UserProfile is a User without its credential.
type UserProfile struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Avatar   string   `json:"avatar,omitempty"`
}

// Profile strips the password.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Name:     u.Name,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}
