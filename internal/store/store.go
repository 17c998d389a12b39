package store

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Token is the persisted bearer credential, newest row wins.
type Token struct {
	ID        uint   `gorm:"primaryKey"`
	Value     string `gorm:"size:8192"`
	CreatedAt time.Time
}

// SentTransfer records a transfer sent from this machine so the CLI can list
// history even when the deployment has no /my endpoint for this account.
type SentTransfer struct {
	ID         uint   `gorm:"primaryKey"`
	TransferID string `gorm:"uniqueIndex"`
	ShareURL   string
	FileCount  int
	TotalBytes int64
	CreatedAt  time.Time
}

var db *gorm.DB

func Init(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	d, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return err
	}
	if err := d.AutoMigrate(&Token{}, &SentTransfer{}); err != nil {
		return err
	}
	db = d
	return nil
}

func Get() *gorm.DB { return db }

// RecordSent upserts one history row keyed by transfer id.
func RecordSent(t SentTransfer) error {
	if db == nil {
		return nil
	}
	var existing SentTransfer
	err := db.Where("transfer_id = ?", t.TransferID).First(&existing).Error
	if err == nil {
		existing.ShareURL = t.ShareURL
		existing.FileCount = t.FileCount
		existing.TotalBytes = t.TotalBytes
		return db.Save(&existing).Error
	}
	return db.Create(&t).Error
}

// History returns the most recent sent transfers, newest first.
func History(limit int) ([]SentTransfer, error) {
	if db == nil {
		return nil, nil
	}
	var out []SentTransfer
	err := db.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
