package model

import "time"

// User represents an end user or staff account.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role           string    `json:"role" gorm:"size:50;default:'user'"`
	Avatar         string    `json:"avatar" gorm:"size:255;default:'NONE'"`
	AccountEnabled bool      `json:"account_enabled" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Identity returns the auth-core view of the user.
func (u *User) Identity() *Identity {
	return &Identity{
		ID:           u.ID,
		Kind:         KindUser,
		Handle:       u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Enabled:      u.AccountEnabled,
		Accepted:     true,
	}
}
