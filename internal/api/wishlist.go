package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"library_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// WishlistRequest names the book to wish for
type WishlistRequest struct {
	BookID uint `json:"book_id" binding:"required"` // Wished book
}

// ListWishlistHandler returns the authenticated member's wishlist
func ListWishlistHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var items []domain.Wishlist
		err := db.Preload("Book").Where("user_id = ?", userID).
			Order("created_at desc").Find(&items).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"wishlist": items})
	}
}

// AddWishlistHandler puts a book on the member's wishlist
func AddWishlistHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req WishlistRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The book must exist in the catalog
		var book domain.Book
		if err := db.First(&book, req.BookID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		item := domain.Wishlist{UserID: userID.(uint), BookID: req.BookID}
		if err := db.Create(&item).Error; err != nil {
			// Unique (user, book) index catches duplicates
			c.JSON(http.StatusConflict, gin.H{"error": "Book already on wishlist"})
			return
		}
		item.Book = book
		c.JSON(http.StatusCreated, gin.H{"wishlist_item": item})
	}
}

// RemoveWishlistHandler deletes an entry from the member's own wishlist
func RemoveWishlistHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wishlist id"})
			return
		}
		// Scoped to the owner so members cannot delete each other's entries
		res := db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&domain.Wishlist{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove wishlist entry"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist entry not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
	}
}
