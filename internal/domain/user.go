package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
)

// Role is the access level of a user
type Role int

const (
	RoleFreelancer Role = 1 // May bid on jobs
	RoleClient     Role = 2 // Elevated level, posts jobs and hires
)

// Valid reports whether r is a known access level
func (r Role) Valid() bool {
	return r == RoleFreelancer || r == RoleClient
}

// CanBid reports whether users with this role may place bids
func (r Role) CanBid() bool {
	return r == RoleFreelancer
}

// String returns the role name
func (r Role) String() string {
	switch r {
	case RoleFreelancer:
		return "freelancer"
	case RoleClient:
		return "client"
	}
	return "unknown"
}

// User Model
type User struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"_id"`        // Primary key
	FirstName      string    `gorm:"not null" json:"firstName"`                  // First name
	LastName       string    `gorm:"not null" json:"lastName"`                   // Last name
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"` // Unique email
	Password       string    `gorm:"not null" json:"-"`                          // Hashed password, never serialized
	Bio            string    `json:"bio"`                                        // Free-text bio
	AccessLevel    Role      `gorm:"not null;default:1" json:"accessLevel"`      // Role
	ProfilePicture string    `json:"profilePicture,omitempty"`                   // Public path of the profile picture
	CreatedAt      time.Time `json:"createdAt"`                                  // Creation timestamp
	UpdatedAt      time.Time `json:"updatedAt"`                                  // Update timestamp
}

// PersonName is the public display name of a user
type PersonName struct {
	ID        uuid.UUID `json:"_id"`       // User ID
	FirstName string    `json:"firstName"` // First name
	LastName  string    `json:"lastName"`  // Last name
}

// Name returns the display name of the user
func (u *User) Name() PersonName {
	return PersonName{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}
