package domain

import "time"

// Wishlist Model
type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                   // Primary key
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_pair" json:"user_id"`  // Owner
	BookID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_pair" json:"book_id"`  // Wished book
	CreatedAt time.Time `json:"created_at"`

	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"` // Book summary for display
}
