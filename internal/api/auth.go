package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation
	"time"     // Timestamps

	"library_system/internal/domain" // Importing domain models
	"library_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"` // Login email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
	Name     string `json:"name" binding:"required"`        // Display name must be provided
	Address  string `json:"address"`                        // Optional postal address
	Phone    string `json:"phone"`                          // Optional contact phone
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

var phonePattern = regexp.MustCompile(`^\+?[0-9\- ]{6,20}$`)

// isValidPassword checks if the password length is between 8 and 72 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 72 // bcrypt input limit
}

// RegisterHandler creates a new member account with a fresh member code
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-72 characters"})
			return
		}
		// Validate optional phone format
		if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create user with lowercase email to ensure uniqueness
		user := domain.User{
			Email:    strings.ToLower(req.Email),
			Password: string(hash),
			Name:     req.Name,
			Address:  req.Address,
			Phone:    req.Phone,
			Role:     domain.RoleUser,
			Status:   domain.UserActive,
			MemberID: utils.NewMemberCode(),
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// Duplicate email is the common failure here
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":   "Registration successful",
			"member_id": user.MemberID,
		})
	}
}

// LoginHandler authenticates a member and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Suspended members cannot start a session
		if user.Status != domain.UserActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Record the login time
		now := time.Now()
		db.Model(&user).Update("last_login", now)
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// ProfileUpdateRequest carries the member-editable profile fields
type ProfileUpdateRequest struct {
	Name         string `json:"name"`          // Display name
	Address      string `json:"address"`       // Postal address
	Phone        string `json:"phone"`         // Contact phone
	ProfileImage string `json:"profile_image"` // Profile image URL
	BirthDate    string `json:"birth_date"`    // Date of birth, YYYY-MM-DD
}

// GetProfileHandler returns the authenticated member's account
func GetProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("currentUser") // Set by ActiveMemberMiddleware
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdateProfileHandler lets a member edit their own profile fields
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ProfileUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
			return
		}
		updates := map[string]any{}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.Address != "" {
			updates["address"] = req.Address
		}
		if req.Phone != "" {
			updates["phone"] = req.Phone
		}
		if req.ProfileImage != "" {
			updates["profile_image"] = req.ProfileImage
		}
		if req.BirthDate != "" {
			birth, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birth_date, expected YYYY-MM-DD"})
				return
			}
			updates["birth_date"] = birth
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		var user domain.User // Return the fresh profile
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
