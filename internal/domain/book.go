package domain

import "time"

// Book Model
type Book struct {
	ID         uint      `gorm:"primaryKey" json:"id"`                 // Primary key
	Title      string    `gorm:"not null;index" json:"title"`          // Book title
	Author     string    `gorm:"not null;index" json:"author"`         // Author name
	Publisher  string    `json:"publisher,omitempty"`                  // Publisher name
	Year       int       `json:"year,omitempty"`                       // Publication year
	ISBN       string    `gorm:"unique;not null" json:"isbn"`          // Unique ISBN
	Category   string    `gorm:"size:80;index" json:"category"`        // Catalog category
	CoverImage string    `json:"cover_image,omitempty"`                // Cover image URL
	Stock      int       `gorm:"not null;default:0" json:"stock"`      // Copies currently available to borrow
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
