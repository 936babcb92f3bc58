package scope

import (
	"time"

	"gorm.io/gorm"
)

func ByKey(key string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("key = ?", key)
	}
}

// Live keeps documents without an expiry or whose expiry is after now.
func Live(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at IS NULL OR expires_at > ?", now)
	}
}

func Expired(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at IS NOT NULL AND expires_at <= ?", now)
	}
}
