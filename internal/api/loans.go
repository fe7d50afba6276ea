package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Date parsing

	"library_system/internal/domain" // Importing domain models
	"library_system/internal/loan"   // Loan lifecycle service
	"library_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Dates cross the wire as plain calendar days
const dateLayout = "2006-01-02"

// loanError maps a lifecycle service failure to an HTTP response
func loanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, loan.ErrLoanNotFound), errors.Is(err, loan.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, loan.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, loan.ErrLoanExists), errors.Is(err, loan.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, loan.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, loan.ErrInvalidStatus), errors.Is(err, loan.ErrInvalidDates):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// invalidateLoanCaches drops catalog and report views after a stock-moving
// transition
func invalidateLoanCaches(rdb *redis.Client) {
	ctx := context.Background()
	_ = utils.DeleteCacheByPrefix(ctx, rdb, catalogCachePrefix)
	_ = utils.DeleteCacheByPrefix(ctx, rdb, reportCachePrefix)
}

// CreateLoanRequest is the borrower's loan request payload
type CreateLoanRequest struct {
	BookID     uint   `json:"book_id" binding:"required"`     // Book to borrow
	BorrowDate string `json:"borrow_date" binding:"required"` // Pickup date, YYYY-MM-DD
	ReturnDate string `json:"return_date" binding:"required"` // Due date, YYYY-MM-DD
	Notes      string `json:"notes"`                          // Optional notes
}

// CreateLoanHandler files a PENDING loan request for the authenticated member
func CreateLoanHandler(svc *loan.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateLoanRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		borrow, err := time.Parse(dateLayout, req.BorrowDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid borrow_date, expected YYYY-MM-DD"})
			return
		}
		due, err := time.Parse(dateLayout, req.ReturnDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid return_date, expected YYYY-MM-DD"})
			return
		}
		created, err := svc.CreateRequest(userID.(uint), req.BookID, borrow, due, req.Notes)
		if err != nil {
			loanError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"loan": created})
	}
}

// ListLoansHandler returns the authenticated member's loans, optionally
// filtered by status
func ListLoansHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		query := db.Preload("Book").Where("user_id = ?", userID)
		if status := c.Query("status"); status != "" {
			if !domain.LoanStatus(status).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
				return
			}
			query = query.Where("status = ?", status)
		}
		var loans []domain.BookLoan
		if err := query.Order("created_at desc").Find(&loans).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch loans"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"loans": loans})
	}
}

// CancelLoanHandler deletes the member's own PENDING loan request
func CancelLoanHandler(svc *loan.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		loanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan id"})
			return
		}
		if err := svc.Cancel(uint(loanID), userID.(uint)); err != nil {
			loanError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Loan request cancelled"})
	}
}

// ReturnLoanRequest optionally pins the actual return date
type ReturnLoanRequest struct {
	ActualReturnDate string `json:"actual_return_date"` // YYYY-MM-DD, defaults to today
}

// ReturnLoanHandler marks the member's own approved loan as returned
func ReturnLoanHandler(svc *loan.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		loanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan id"})
			return
		}
		var req ReturnLoanRequest // Body is optional
		_ = c.ShouldBindJSON(&req)
		var when *time.Time
		if req.ActualReturnDate != "" {
			parsed, err := time.Parse(dateLayout, req.ActualReturnDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actual_return_date, expected YYYY-MM-DD"})
				return
			}
			when = &parsed
		}
		returned, err := svc.Return(uint(loanID), userID.(uint), when)
		if err != nil {
			loanError(c, err)
			return
		}
		invalidateLoanCaches(rdb) // Stock moved
		c.JSON(http.StatusOK, gin.H{"loan": returned})
	}
}

// ListAllLoansHandler returns every loan with borrower and book summaries
// (admin only), filtered and paginated
func ListAllLoansHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pagination(c)
		query := db.Model(&domain.BookLoan{})
		if status := c.Query("status"); status != "" {
			if !domain.LoanStatus(status).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
				return
			}
			query = query.Where("status = ?", status)
		}
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count loans"})
			return
		}
		var loans []domain.BookLoan
		err := query.Preload("User").Preload("Book").
			Order("created_at desc").Offset(offset).Limit(pageSize).
			Find(&loans).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch loans"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"loans":       loans,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
		})
	}
}

// UpdateLoanRequest is the admin transition payload
type UpdateLoanRequest struct {
	Status           string `json:"status" binding:"required"` // Target status
	ActualReturnDate string `json:"actual_return_date"`        // YYYY-MM-DD, return edges only
	Notes            string `json:"notes"`                     // Optional admin notes
}

// AdminUpdateLoanHandler applies a status transition to any loan (admin
// only); the verify-return path is the same PATCH with status RETURNED
func AdminUpdateLoanHandler(svc *loan.Service, db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		loanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan id"})
			return
		}
		var req UpdateLoanRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var when *time.Time
		if req.ActualReturnDate != "" {
			parsed, err := time.Parse(dateLayout, req.ActualReturnDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actual_return_date, expected YYYY-MM-DD"})
				return
			}
			when = &parsed
		}
		updated, err := svc.UpdateStatus(uint(loanID), domain.LoanStatus(req.Status), when)
		if err != nil {
			loanError(c, err)
			return
		}
		if req.Notes != "" {
			if err := db.Model(&domain.BookLoan{}).Where("id = ?", updated.ID).Update("notes", req.Notes).Error; err == nil {
				updated.Notes = req.Notes
			}
		}
		invalidateLoanCaches(rdb) // Stock may have moved
		c.JSON(http.StatusOK, gin.H{"loan": updated})
	}
}
