// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User is a stored credential record.
// Records are created on registration and never updated or deleted.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is unique across all users.
	Username string `gorm:"column:username;uniqueIndex;size:255;not null"`

	// PasswordHash is the output of the configured password hasher, never plaintext.
	PasswordHash string `gorm:"column:password;size:255;not null"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time
}

// TableName keeps the table name used by existing deployments.
func (User) TableName() string {
	return "userstable"
}
