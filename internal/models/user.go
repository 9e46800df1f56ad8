package models

import (
	"time"
)

// UserCollection tracks the version of one collection of one user.
// The version is bumped by every write to the collection.
type UserCollection struct {
	UserID         string `gorm:"primaryKey;size:64"`
	CollectionName string `gorm:"primaryKey;size:64"`
	Version        uint64 `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserRecord is one record at users/{userId}/{collection}/{recordId}
type UserRecord struct {
	UserID         string `gorm:"primaryKey;size:64;index:idx_user_records_collection,priority:1"`
	CollectionName string `gorm:"primaryKey;size:64;index:idx_user_records_collection,priority:2"`
	RecordID       string `gorm:"primaryKey;type:char(36)"`
	SchemaVersion  int    `gorm:"not null;default:1"`
	Body           JSON
	CreatedAt      time.Time `gorm:"index:idx_user_records_collection,priority:3"`
	UpdatedAt      time.Time
}

// UserProfileRecord is the profile document at users/{userId}
type UserProfileRecord struct {
	UserID        string `gorm:"primaryKey;size:64"`
	SchemaVersion int    `gorm:"not null;default:1"`
	Version       uint64 `gorm:"not null;default:0"`
	Body          JSON
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the table name for UserCollection
func (UserCollection) TableName() string {
	return "user_collections"
}

// TableName overrides the table name for UserRecord
func (UserRecord) TableName() string {
	return "user_records"
}

// TableName overrides the table name for UserProfileRecord
func (UserProfileRecord) TableName() string {
	return "user_profiles"
}
