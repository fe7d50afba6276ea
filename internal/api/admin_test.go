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

func TestLoanReportHandler(t *testing.T) {
	db := setupTestDB(t)
	svc := loan.NewService(db)
	userA := seedUser(t, db, "a@lib.test", domain.RoleUser)
	userB := seedUser(t, db, "b@lib.test", domain.RoleUser)
	book := seedBook(t, db, "isbn-1", 5)

	past := time.Now().AddDate(0, 0, -10)
	overdueLoan, err := svc.CreateRequest(userA.ID, book.ID, past, past.AddDate(0, 0, 7), "")
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(overdueLoan.ID, domain.StatusApproved, nil)
	assert.NoError(t, err)
	_, err = svc.CreateRequest(userB.ID, book.ID, time.Now(), time.Now().AddDate(0, 0, 7), "")
	assert.NoError(t, err)

	c, w := testContext(t, "GET", "/admin/reports/loans", nil, 0)
	LoanReportHandler(db, nil)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Total    int64            `json:"total"`
		ByStatus map[string]int64 `json:"by_status"`
		Overdue  int64            `json:"overdue"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, int64(1), resp.ByStatus["APPROVED"])
	assert.Equal(t, int64(1), resp.ByStatus["PENDING"])
	assert.Equal(t, int64(1), resp.Overdue)
}

func TestPopularBooksHandler(t *testing.T) {
	db := setupTestDB(t)
	svc := loan.NewService(db)
	userA := seedUser(t, db, "a@lib.test", domain.RoleUser)
	userB := seedUser(t, db, "b@lib.test", domain.RoleUser)
	hit := seedBook(t, db, "isbn-hit", 5)
	miss := seedBook(t, db, "isbn-miss", 5)

	now := time.Now()
	due := now.AddDate(0, 0, 7)
	_, err := svc.CreateRequest(userA.ID, hit.ID, now, due, "")
	assert.NoError(t, err)
	_, err = svc.CreateRequest(userB.ID, hit.ID, now, due, "")
	assert.NoError(t, err)
	_, err = svc.CreateRequest(userA.ID, miss.ID, now, due, "")
	assert.NoError(t, err)

	c, w := testContext(t, "GET", "/admin/reports/popular?limit=1", nil, 0)
	PopularBooksHandler(db, nil)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Books []struct {
			BookID    uint  `json:"book_id"`
			LoanCount int64 `json:"loan_count"`
		} `json:"books"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Books, 1)
	assert.Equal(t, hit.ID, resp.Books[0].BookID)
	assert.Equal(t, int64(2), resp.Books[0].LoanCount)
}

func TestOverdueLoansHandlerDerivedOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := loan.NewService(db)
	user := seedUser(t, db, "a@lib.test", domain.RoleUser)
	book := seedBook(t, db, "isbn-1", 2)

	past := time.Now().AddDate(0, 0, -10)
	created, err := svc.CreateRequest(user.ID, book.ID, past, past.AddDate(0, 0, 7), "")
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(created.ID, domain.StatusApproved, nil)
	assert.NoError(t, err)

	c, w := testContext(t, "GET", "/admin/reports/overdue", nil, 0)
	OverdueLoansHandler(svc)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Loans []domain.BookLoan `json:"loans"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Loans, 1)
	// Listing does not flip the status to LATE
	assert.Equal(t, domain.StatusApproved, resp.Loans[0].Status)
}

func TestUpdateMemberHandler(t *testing.T) {
	db := setupTestDB(t)
	member := seedUser(t, db, "a@lib.test", domain.RoleUser)

	c, w := testContext(t, "PATCH", "/admin/members/1", gin.H{"status": "SUSPENDED"}, 0)
	c.Params = gin.Params{{Key: "id", Value: itoa(member.ID)}}
	UpdateMemberHandler(db, nil)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var reloaded domain.User
	assert.NoError(t, db.First(&reloaded, member.ID).Error)
	assert.Equal(t, domain.UserSuspended, reloaded.Status)
}

func TestUpdateMemberHandlerUnknownRole(t *testing.T) {
	db := setupTestDB(t)
	member := seedUser(t, db, "a@lib.test", domain.RoleUser)

	c, w := testContext(t, "PATCH", "/admin/members/1", gin.H{"role": "librarian"}, 0)
	c.Params = gin.Params{{Key: "id", Value: itoa(member.ID)}}
	UpdateMemberHandler(db, nil)(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListMembersHandler(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "a@lib.test", domain.RoleUser)
	seedUser(t, db, "b@lib.test", domain.RoleAdmin)

	c, w := testContext(t, "GET", "/admin/members", nil, 0)
	ListMembersHandler(db, nil)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Members []MemberResponse `json:"members"`
		Total   int64            `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Members, 2)
}
