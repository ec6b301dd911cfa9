package store

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileRecord holds one device's profile as a JSON document.
type ProfileRecord struct {
	DeviceID  string         `gorm:"primaryKey;size:64" json:"device_id"`
	Data      datatypes.JSON `gorm:"not null" json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (ProfileRecord) TableName() string {
	return "vibe_profiles"
}

// ResultRecord is one history entry. Seq keeps append order.
type ResultRecord struct {
	Seq       uint64         `gorm:"primaryKey;autoIncrement" json:"seq"`
	ID        string         `gorm:"size:36;not null;uniqueIndex" json:"id"`
	DeviceID  string         `gorm:"size:64;not null;index" json:"device_id"`
	Timestamp int64          `gorm:"not null" json:"timestamp"`
	Data      datatypes.JSON `gorm:"not null" json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ResultRecord) TableName() string {
	return "vibe_results"
}

// Models lists the tables the store needs migrated.
func Models() []interface{} {
	return []interface{}{
		&ProfileRecord{},
		&ResultRecord{},
	}
}
