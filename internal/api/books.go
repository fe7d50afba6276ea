package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTLs

	"library_system/internal/domain" // Importing domain models
	"library_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Cache key prefix for every catalog view; invalidated on any book write
const catalogCachePrefix = "books:"

// catalogTTL bounds how stale the public catalog may get
const catalogTTL = 60 * time.Second

// pagination reads page/page_size query params with the usual bounds
func pagination(c *gin.Context) (page, pageSize, offset int) {
	page = 1      // Default page
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize, (page - 1) * pageSize
}

// ListBooksHandler returns the paginated catalog with optional category and
// title/author filters, cached per query in Redis
func ListBooksHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pagination(c)
		category := c.Query("category") // Optional category filter
		search := c.Query("q")          // Optional title/author search
		ctx := context.Background()
		cacheKey := catalogCachePrefix + "list:cat=" + category + ":q=" + search +
			":page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached struct {
			Books      []domain.Book `json:"books"`
			Page       int           `json:"page"`
			PageSize   int           `json:"page_size"`
			Total      int64         `json:"total"`
			TotalPages int           `json:"total_pages"`
		}
		// Serve from cache when possible
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"books":       cached.Books,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		query := db.Model(&domain.Book{})
		if category != "" {
			query = query.Where("category = ?", category)
		}
		if search != "" {
			like := "%" + search + "%"
			query = query.Where("title LIKE ? OR author LIKE ?", like, like)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count books"})
			return
		}
		var books []domain.Book
		if err := query.Order("title asc").Offset(offset).Limit(pageSize).Find(&books).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
			return
		}
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"books":       books,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages,
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, catalogTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// GetBookHandler returns a single catalog entry
func GetBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		ctx := context.Background()
		cacheKey := catalogCachePrefix + "id:" + id
		var book domain.Book
		found, err := utils.GetCache(ctx, rdb, cacheKey, &book)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"book": book, "cached": true})
			return
		}
		if err := db.First(&book, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, book, catalogTTL)
		c.JSON(http.StatusOK, gin.H{"book": book, "cached": false})
	}
}

// BookRequest carries the admin-editable catalog fields
type BookRequest struct {
	Title      string `json:"title" binding:"required"`  // Book title
	Author     string `json:"author" binding:"required"` // Author name
	Publisher  string `json:"publisher"`                 // Publisher name
	Year       int    `json:"year"`                      // Publication year
	ISBN       string `json:"isbn" binding:"required"`   // Unique ISBN
	Category   string `json:"category"`                  // Catalog category
	CoverImage string `json:"cover_image"`               // Cover image URL
	Stock      int    `json:"stock" binding:"gte=0"`     // Copies on the shelf
}

// CreateBookHandler adds a catalog entry (admin only)
func CreateBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BookRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		book := domain.Book{
			Title:      req.Title,
			Author:     req.Author,
			Publisher:  req.Publisher,
			Year:       req.Year,
			ISBN:       req.ISBN,
			Category:   req.Category,
			CoverImage: req.CoverImage,
			Stock:      req.Stock,
		}
		if err := db.Create(&book).Error; err != nil {
			// Duplicate ISBN is the common failure here
			c.JSON(http.StatusConflict, gin.H{"error": "ISBN already in catalog"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"book_id": book.ID,
			"isbn":    book.ISBN,
			"stock":   book.Stock,
		}).Info("Book added to catalog")
		// Every catalog view may now be stale
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, catalogCachePrefix)
		c.JSON(http.StatusCreated, gin.H{"book": book})
	}
}

// UpdateBookHandler edits a catalog entry (admin only). Stock set here
// represents copies physically added or removed from the shelf.
func UpdateBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var book domain.Book
		if err := db.First(&book, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var req BookRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates := map[string]any{
			"title":       req.Title,
			"author":      req.Author,
			"publisher":   req.Publisher,
			"year":        req.Year,
			"isbn":        req.ISBN,
			"category":    req.Category,
			"cover_image": req.CoverImage,
			"stock":       req.Stock,
		}
		if err := db.Model(&book).Updates(updates).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "ISBN already in catalog"})
			return
		}
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, catalogCachePrefix)
		c.JSON(http.StatusOK, gin.H{"book": book})
	}
}

// DeleteBookHandler removes a catalog entry (admin only); refused while any
// loan still holds the book active
func DeleteBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var book domain.Book
		if err := db.First(&book, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var active int64
		err := db.Model(&domain.BookLoan{}).
			Where("book_id = ? AND status IN ?", book.ID, domain.ActiveStatuses()).
			Count(&active).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check loans"})
			return
		}
		if active > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Book has active loans"})
			return
		}
		if err := db.Delete(&book).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete book"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"book_id": book.ID,
			"isbn":    book.ISBN,
		}).Info("Book removed from catalog")
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, catalogCachePrefix)
		c.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
	}
}
