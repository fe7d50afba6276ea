package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"library_system/internal/domain"
	"library_system/internal/loan"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestListBooksHandlerFilters(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Create(&domain.Book{Title: "Go in Practice", Author: "Butcher", ISBN: "i1", Category: "tech", Stock: 2}).Error)
	assert.NoError(t, db.Create(&domain.Book{Title: "The Trial", Author: "Kafka", ISBN: "i2", Category: "fiction", Stock: 1}).Error)
	assert.NoError(t, db.Create(&domain.Book{Title: "The Go Programming Language", Author: "Donovan", ISBN: "i3", Category: "tech", Stock: 3}).Error)

	c, w := testContext(t, "GET", "/books?category=tech&q=Go", nil, 0)
	ListBooksHandler(db, nil)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Books []domain.Book `json:"books"`
		Total int64         `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	for _, b := range resp.Books {
		assert.Equal(t, "tech", b.Category)
	}
}

func TestGetBookHandlerNotFound(t *testing.T) {
	db := setupTestDB(t)

	c, w := testContext(t, "GET", "/books/999", nil, 0)
	c.Params = gin.Params{{Key: "id", Value: "999"}}
	GetBookHandler(db, nil)(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBookHandler(t *testing.T) {
	db := setupTestDB(t)

	c, w := testContext(t, "POST", "/admin/books", gin.H{
		"title":  "Dune",
		"author": "Herbert",
		"isbn":   "978-0441013593",
		"stock":  4,
	}, 0)
	CreateBookHandler(db, nil)(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var book domain.Book
	assert.NoError(t, db.Where("isbn = ?", "978-0441013593").First(&book).Error)
	assert.Equal(t, 4, book.Stock)
}

func TestCreateBookHandlerDuplicateISBN(t *testing.T) {
	db := setupTestDB(t)
	body := gin.H{"title": "Dune", "author": "Herbert", "isbn": "978-0441013593", "stock": 1}

	c, w := testContext(t, "POST", "/admin/books", body, 0)
	CreateBookHandler(db, nil)(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = testContext(t, "POST", "/admin/books", body, 0)
	CreateBookHandler(db, nil)(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteBookHandlerRefusedWithActiveLoans(t *testing.T) {
	db := setupTestDB(t)
	svc := loan.NewService(db)
	user := seedUser(t, db, "a@lib.test", domain.RoleUser)
	book := seedBook(t, db, "isbn-1", 1)
	_, err := svc.CreateRequest(user.ID, book.ID, time.Now(), time.Now().AddDate(0, 0, 7), "")
	assert.NoError(t, err)

	c, w := testContext(t, "DELETE", "/admin/books/1", nil, 0)
	c.Params = gin.Params{{Key: "id", Value: itoa(book.ID)}}
	DeleteBookHandler(db, nil)(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Once the loan resolves, deletion goes through
	var pending domain.BookLoan
	assert.NoError(t, db.Where("book_id = ?", book.ID).First(&pending).Error)
	_, err = svc.UpdateStatus(pending.ID, domain.StatusRejected, nil)
	assert.NoError(t, err)

	c, w = testContext(t, "DELETE", "/admin/books/1", nil, 0)
	c.Params = gin.Params{{Key: "id", Value: itoa(book.ID)}}
	DeleteBookHandler(db, nil)(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
