package domain

import "time"

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User account statuses
const (
	UserActive    = "ACTIVE"
	UserSuspended = "SUSPENDED"
)

// User Model
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`                 // Primary key
	Email        string     `gorm:"unique;not null" json:"email"`         // Unique login email
	Password     string     `gorm:"not null" json:"-"`                    // Hashed password, never serialized
	Name         string     `gorm:"not null" json:"name"`                 // Display name
	Role         string     `gorm:"size:20;default:user" json:"role"`     // Role: user or admin
	Status       string     `gorm:"size:20;default:ACTIVE" json:"status"` // Account status: ACTIVE or SUSPENDED
	MemberID     string     `gorm:"unique;not null" json:"member_id"`     // Human-readable member code
	ProfileImage string     `json:"profile_image,omitempty"`              // Profile image URL
	Address      string     `json:"address,omitempty"`                    // Postal address
	Phone        string     `json:"phone,omitempty"`                      // Contact phone
	BirthDate    *time.Time `json:"birth_date,omitempty"`                 // Date of birth
	LastLogin    *time.Time `json:"last_login,omitempty"`                 // Timestamp of last successful login
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
