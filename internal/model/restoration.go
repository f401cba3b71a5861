package model

import "time"

// RestorationRequest is the persisted attempt counter for one password
// recovery flow. It is created only for real, eligible principals and deleted
// when the flow finishes or the attempt bound is passed.
type RestorationRequest struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	PrincipalID uint          `json:"principal_id" gorm:"index;not null"`
	Kind        PrincipalKind `json:"kind" gorm:"size:16;index;not null"`
	Attempts    int           `json:"attempts" gorm:"not null;default:0"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
