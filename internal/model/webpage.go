package model

import "time"

// Webpage is a merchant storefront page.
type Webpage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	MerchantID uint      `json:"merchant_id" gorm:"index;not null"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	City       string    `json:"city" gorm:"size:128"`
	Activity   string    `json:"activity" gorm:"size:128"`
	Summary    string    `json:"summary" gorm:"size:1024"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
