package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a record of the local identity directory.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	Name           string
	ResetToken     *string `gorm:"index"`
	ResetExpiresAt *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// Identity is an authenticated user's profile as known to the identity provider.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Identity converts a directory record to the profile handed to sessions.
func (u *User) Identity() *Identity {
	return &Identity{
		UID:         u.ID.String(),
		Email:       u.Email,
		DisplayName: u.Name,
	}
}
