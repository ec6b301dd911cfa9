package device

import "gorm.io/gorm"

// ForDevice returns a GORM scope that filters by device_id.
func ForDevice(deviceID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("device_id = ?", deviceID)
	}
}
