package model

import "time"

// Merchant represents a storefront owner. A merchant activates its own account
// via the emailed token but cannot log in until an admin accepts it.
type Merchant struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Merchantname    string    `json:"merchantname" gorm:"uniqueIndex;size:255;not null"`
	Email           string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"`
	CIF             string    `json:"cif" gorm:"size:64"`
	Address         string    `json:"address" gorm:"size:255"`
	AccountEnabled  bool      `json:"account_enabled" gorm:"not null;default:false"`
	AccountAccepted bool      `json:"account_accepted" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Identity returns the auth-core view of the merchant.
func (m *Merchant) Identity() *Identity {
	return &Identity{
		ID:           m.ID,
		Kind:         KindMerchant,
		Handle:       m.Merchantname,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         RoleMerchant,
		Enabled:      m.AccountEnabled,
		Accepted:     m.AccountAccepted,
	}
}
