package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTLs and overdue cutoff

	"library_system/internal/domain" // Importing domain models
	"library_system/internal/loan"   // Loan lifecycle service
	"library_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Cache key prefixes for admin views
const (
	memberCachePrefix = "admin:members:"
	reportCachePrefix = "admin:reports:"
)

// reportTTL bounds dashboard staleness
const reportTTL = 60 * time.Second

// MemberResponse is the admin view of a member account
type MemberResponse struct {
	ID        uint       `json:"id"`                   // User ID
	Email     string     `json:"email"`                // Login email
	Name      string     `json:"name"`                 // Display name
	MemberID  string     `json:"member_id"`            // Member code
	Role      string     `json:"role"`                 // Role: user or admin
	Status    string     `json:"status"`               // ACTIVE or SUSPENDED
	LastLogin *time.Time `json:"last_login,omitempty"` // Last successful login
	CreatedAt time.Time  `json:"created_at"`           // Registration time
}

// ListMembersHandler returns all member accounts (admin only), paginated
// and cached
func ListMembersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		page, pageSize, offset := pagination(c)
		cacheKey := memberCachePrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached struct {
			Members    []MemberResponse `json:"members"`
			Page       int              `json:"page"`
			PageSize   int              `json:"page_size"`
			Total      int64            `json:"total"`
			TotalPages int              `json:"total_pages"`
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"members":     cached.Members,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		var total int64
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count members"})
			return
		}
		var users []domain.User
		if err := db.Order("id asc").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
			return
		}
		members := make([]MemberResponse, len(users))
		for i, u := range users {
			members[i] = MemberResponse{
				ID:        u.ID,
				Email:     u.Email,
				Name:      u.Name,
				MemberID:  u.MemberID,
				Role:      u.Role,
				Status:    u.Status,
				LastLogin: u.LastLogin,
				CreatedAt: u.CreatedAt,
			}
		}
		resp := gin.H{
			"members":     members,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, reportTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// MemberUpdateRequest carries the admin-editable account fields
type MemberUpdateRequest struct {
	Role   string `json:"role"`   // user or admin
	Status string `json:"status"` // ACTIVE or SUSPENDED
}

// UpdateMemberHandler changes a member's role or status (admin only)
func UpdateMemberHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user domain.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		var req MemberUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates := map[string]any{}
		if req.Role != "" {
			if req.Role != domain.RoleUser && req.Role != domain.RoleAdmin {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
				return
			}
			updates["role"] = req.Role
		}
		if req.Status != "" {
			if req.Status != domain.UserActive && req.Status != domain.UserSuspended {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
				return
			}
			updates["status"] = req.Status
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"member_id": user.ID,
			"role":      user.Role,
			"status":    user.Status,
		}).Info("Member account updated")
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, memberCachePrefix)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// LoanReportHandler summarizes loans per status plus the derived overdue
// count (admin only). Overdue here is a read-only classification; it never
// writes LATE back to any loan.
func LoanReportHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := reportCachePrefix + "loans"
		var cached map[string]any
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}
		type statusCount struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		}
		var rows []statusCount
		err = db.Model(&domain.BookLoan{}).
			Select("status, count(*) as count").
			Group("status").
			Scan(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate loans"})
			return
		}
		counts := map[string]int64{}
		var total int64
		for _, row := range rows {
			counts[row.Status] = row.Count
			total += row.Count
		}
		var overdue int64
		err = db.Model(&domain.BookLoan{}).
			Where("status = ? AND return_date < ? AND actual_return_date IS NULL", domain.StatusApproved, time.Now()).
			Count(&overdue).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count overdue loans"})
			return
		}
		resp := gin.H{
			"total":     total,
			"by_status": counts,
			"overdue":   overdue,
			"cached":    false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, reportTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// PopularBooksHandler lists the most borrowed books (admin only)
func PopularBooksHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		limit := 10 // Default top list size
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 50 {
				limit = v
			}
		}
		cacheKey := reportCachePrefix + "popular:limit=" + strconv.Itoa(limit)
		type popularBook struct {
			BookID    uint   `json:"book_id"`
			Title     string `json:"title"`
			Author    string `json:"author"`
			LoanCount int64  `json:"loan_count"`
		}
		var cached struct {
			Books []popularBook `json:"books"`
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"books": cached.Books, "cached": true})
			return
		}
		var books []popularBook
		err = db.Model(&domain.BookLoan{}).
			Select("book_loans.book_id, books.title, books.author, count(*) as loan_count").
			Joins("JOIN books ON books.id = book_loans.book_id").
			Group("book_loans.book_id, books.title, books.author").
			Order("loan_count desc").
			Limit(limit).
			Scan(&books).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate popular books"})
			return
		}
		resp := gin.H{"books": books, "cached": false}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, reportTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// OverdueLoansHandler lists approved loans past their due date (admin only)
func OverdueLoansHandler(svc *loan.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		loans, err := svc.Overdue(time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch overdue loans"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"loans": loans})
	}
}
