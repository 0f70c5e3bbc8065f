package models

import "time"

type User struct {
	BaseModel
	FirstName       string `gorm:"size:100;not null" json:"firstName"`
	LastName        string `gorm:"size:100;not null" json:"lastName"`
	Email           string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash    string `gorm:"not null" json:"-"`
	Role            string `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive        bool   `gorm:"not null" json:"isActive"`
	IsEmailVerified bool   `gorm:"not null" json:"isEmailVerified"`

	// Single-use tokens are stored as SHA-256 hashes.
	EmailVerificationToken   string     `gorm:"size:64" json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`
	PasswordResetToken       string     `gorm:"size:64" json:"-"`
	PasswordResetExpires     *time.Time `json:"-"`

	PasswordChangedAt *time.Time `json:"-"`
	LastLogin         *time.Time `json:"lastLogin,omitempty"`
}

// PasswordChangedAfter reports whether the password changed after a token
// issued at iat, compared at millisecond precision.
func (u *User) PasswordChangedAfter(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return iat.UnixMilli() < u.PasswordChangedAt.UnixMilli()
}
