package domain

import "time"

const (
	AuthProviderLocal = "local"

	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	UserID        string    `json:"id" dynamodbav:"user_id"`
	Username      string    `json:"username" dynamodbav:"username"`
	Email         string    `json:"email" dynamodbav:"email"`
	PasswordHash  string    `json:"-" dynamodbav:"password_hash"`
	DisplayName   string    `json:"display_name" dynamodbav:"display_name"`
	Bio           string    `json:"bio,omitempty" dynamodbav:"bio"`
	AvatarURL     string    `json:"avatar_url,omitempty" dynamodbav:"avatar_url"`
	Role          string    `json:"role" dynamodbav:"role"`
	EmailVerified bool      `json:"email_verified" dynamodbav:"email_verified"`
	AuthProvider  string    `json:"auth_provider" dynamodbav:"auth_provider"`
	// RefreshToken is the single stored refresh token for the user. Overwriting
	// it on login/refresh is the entire revocation mechanism; clearing it on
	// logout makes any outstanding refresh token unusable.
	RefreshToken string    `json:"-" dynamodbav:"refresh_token,omitempty"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// ProfileSnapshot is the versioned profile claim embedded in signed tokens.
// Version must be bumped whenever the field set changes so downstream
// consumers can detect stale snapshots instead of silently misreading them.
type ProfileSnapshot struct {
	Version     int    `json:"v"`
	UserID      string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// ProfileSnapshotVersion is the current claim schema version.
const ProfileSnapshotVersion = 1

// Snapshot returns the profile claim payload for u.
func (u *User) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		Version:     ProfileSnapshotVersion,
		UserID:      u.UserID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}
