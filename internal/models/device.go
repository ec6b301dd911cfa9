package models

import "time"

// Device is a registered handset. The secret is stored as a bcrypt hash.
type Device struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	SecretHash string    `gorm:"not null" json:"-"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
