package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"library_system/internal/domain"
	"library_system/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role, status string) domain.User {
	user := domain.User{
		Email:    role + "@lib.test",
		Password: "hash",
		Name:     "Test",
		Role:     role,
		Status:   status,
		MemberID: "LIB-" + role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func requestWithToken(t *testing.T, userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	token, err := utils.GenerateJWT(userID, testSecret)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	c.Request.Header.Set("Authorization", "Bearer "+token)
	return c, w
}

func TestJWTAuthMiddlewareValidToken(t *testing.T) {
	c, w := requestWithToken(t, 42)

	JWTAuthMiddleware(testSecret)(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
	userID, exists := c.Get("userID")
	assert.True(t, exists)
	assert.Equal(t, uint(42), userID)
}

func TestJWTAuthMiddlewareMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	JWTAuthMiddleware(testSecret)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddlewareBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("Authorization", "Bearer not-a-token")

	JWTAuthMiddleware(testSecret)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, domain.RoleAdmin, domain.UserActive)
	member := seedUser(t, db, domain.RoleUser, domain.UserActive)

	c, w := requestWithToken(t, admin.ID)
	c.Set("userID", admin.ID)
	AdminOnlyMiddleware(db)(c)
	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = requestWithToken(t, member.ID)
	c.Set("userID", member.ID)
	AdminOnlyMiddleware(db)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestActiveMemberMiddlewareRejectsSuspended(t *testing.T) {
	db := setupTestDB(t)
	suspended := seedUser(t, db, domain.RoleUser, domain.UserSuspended)

	c, w := requestWithToken(t, suspended.ID)
	c.Set("userID", suspended.ID)
	ActiveMemberMiddleware(db)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestActiveMemberMiddlewareLoadsUser(t *testing.T) {
	db := setupTestDB(t)
	member := seedUser(t, db, domain.RoleUser, domain.UserActive)

	c, w := requestWithToken(t, member.ID)
	c.Set("userID", member.ID)
	ActiveMemberMiddleware(db)(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
	loaded, exists := c.Get("currentUser")
	assert.True(t, exists)
	assert.Equal(t, member.ID, loaded.(domain.User).ID)
}
