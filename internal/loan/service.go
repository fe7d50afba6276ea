package loan

import (
	"errors"
	"time"

	"library_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Service owns the BookLoan state machine and keeps Book.Stock consistent
// with the set of outstanding approved loans. Stock is only ever mutated
// through the transition table in domain.Transition, and always inside the
// same database transaction as the loan row update.
type Service struct {
	db *gorm.DB
}

// NewService wraps a database handle in a lifecycle service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateRequest records a PENDING loan request for the given borrower and
// book. Stock is untouched until an admin approves the request.
func (s *Service) CreateRequest(userID, bookID uint, borrowDate, returnDate time.Time, notes string) (*domain.BookLoan, error) {
	if returnDate.Before(borrowDate) {
		return nil, ErrInvalidDates
	}
	var book domain.Book
	if err := s.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if book.Stock <= 0 {
		return nil, ErrOutOfStock
	}
	// One active loan per (member, book) pair
	var active int64
	err := s.db.Model(&domain.BookLoan{}).
		Where("user_id = ? AND book_id = ? AND status IN ?", userID, bookID, domain.ActiveStatuses()).
		Count(&active).Error
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, ErrLoanExists
	}
	loan := domain.BookLoan{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		ReturnDate: returnDate,
		Status:     domain.StatusPending,
		Notes:      notes,
	}
	if err := s.db.Create(&loan).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"book_id": bookID,
			"error":   err.Error(),
		}).Error("Failed to create loan request")
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"loan_id": loan.ID,
		"user_id": userID,
		"book_id": bookID,
	}).Info("Loan requested")
	return s.Get(loan.ID)
}

// Cancel deletes a loan request that is still PENDING. Only the owner may
// cancel, and approved loans must go through the return path instead.
func (s *Service) Cancel(loanID, requesterID uint) error {
	var loan domain.BookLoan
	if err := s.db.First(&loan, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLoanNotFound
		}
		return err
	}
	if loan.UserID != requesterID {
		return ErrNotOwner
	}
	if loan.Status != domain.StatusPending {
		return ErrInvalidState
	}
	// Status re-checked in the WHERE clause so a concurrent approval wins
	res := s.db.Where("id = ? AND status = ?", loan.ID, domain.StatusPending).Delete(&domain.BookLoan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidState
	}
	logrus.WithFields(logrus.Fields{
		"loan_id": loanID,
		"user_id": requesterID,
	}).Info("Loan request cancelled")
	return nil
}

// UpdateStatus applies an admin transition to a loan. The stock delta is
// computed from the (old, new) status pair, never from the new status
// alone, and both writes happen in one transaction.
func (s *Service) UpdateStatus(loanID uint, newStatus domain.LoanStatus, actualReturnDate *time.Time) (*domain.BookLoan, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}
	var loan domain.BookLoan
	if err := s.db.First(&loan, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	if err := s.apply(&loan, newStatus, actualReturnDate); err != nil {
		return nil, err
	}
	return s.Get(loan.ID)
}

// Return is the borrower-initiated variant of UpdateStatus, restricted to
// the loan's owner and to the return edge.
func (s *Service) Return(loanID, requesterID uint, actualReturnDate *time.Time) (*domain.BookLoan, error) {
	var loan domain.BookLoan
	if err := s.db.First(&loan, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	if loan.UserID != requesterID {
		return nil, ErrNotOwner
	}
	if err := s.apply(&loan, domain.StatusReturned, actualReturnDate); err != nil {
		return nil, err
	}
	return s.Get(loan.ID)
}

// apply persists one status transition together with its stock effect. The
// loan update is guarded on the previously-read status and the decrement on
// remaining stock, so concurrent transitions cannot double-count.
func (s *Service) apply(loan *domain.BookLoan, newStatus domain.LoanStatus, actualReturnDate *time.Time) error {
	delta, ok := domain.Transition(loan.Status, newStatus)
	if !ok {
		return ErrInvalidState
	}
	updates := map[string]interface{}{"status": newStatus}
	if newStatus == domain.StatusReturned && loan.ActualReturnDate == nil {
		when := time.Now()
		if actualReturnDate != nil {
			when = *actualReturnDate
		}
		updates["actual_return_date"] = when
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.BookLoan{}).
			Where("id = ? AND status = ?", loan.ID, loan.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Someone moved the loan since we read it
			return ErrInvalidState
		}
		switch {
		case delta < 0:
			// Conditional single-statement decrement; never write a value
			// computed from a separately-read stock
			res := tx.Model(&domain.Book{}).
				Where("id = ? AND stock > 0", loan.BookID).
				Update("stock", gorm.Expr("stock - 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOutOfStock
			}
		case delta > 0:
			if err := tx.Model(&domain.Book{}).
				Where("id = ?", loan.BookID).
				Update("stock", gorm.Expr("stock + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidState) && !errors.Is(err, ErrOutOfStock) {
			logrus.WithFields(logrus.Fields{
				"loan_id": loan.ID,
				"from":    loan.Status,
				"to":      newStatus,
				"error":   err.Error(),
			}).Error("Loan transition failed")
		}
		return err
	}
	logrus.WithFields(logrus.Fields{
		"loan_id":     loan.ID,
		"book_id":     loan.BookID,
		"from":        loan.Status,
		"to":          newStatus,
		"stock_delta": delta,
	}).Info("Loan transition")
	return nil
}

// Get loads one loan with its borrower and book summaries
func (s *Service) Get(loanID uint) (*domain.BookLoan, error) {
	var loan domain.BookLoan
	err := s.db.Preload("User").Preload("Book").First(&loan, loanID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// Overdue lists approved loans past their due date with no recorded
// return. This is a derived, read-only classification for reporting; it
// never writes status or stock. Marking a loan LATE stays an explicit
// admin transition.
func (s *Service) Overdue(now time.Time) ([]domain.BookLoan, error) {
	var loans []domain.BookLoan
	err := s.db.Preload("User").Preload("Book").
		Where("status = ? AND return_date < ? AND actual_return_date IS NULL", domain.StatusApproved, now).
		Order("return_date asc").
		Find(&loans).Error
	return loans, err
}
