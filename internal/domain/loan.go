package domain

import "time"

// LoanStatus is the lifecycle state of a book loan
type LoanStatus string

// Loan lifecycle states
const (
	StatusPending  LoanStatus = "PENDING"  // Requested by the borrower, awaiting admin decision
	StatusApproved LoanStatus = "APPROVED" // Copy handed out, stock decremented
	StatusRejected LoanStatus = "REJECTED" // Request declined, terminal
	StatusReturned LoanStatus = "RETURNED" // Copy back on the shelf, terminal
	StatusLate     LoanStatus = "LATE"     // Flagged overdue by an admin, copy still out
)

// Valid reports whether s is one of the defined loan statuses
func (s LoanStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusReturned, StatusLate:
		return true
	}
	return false
}

// Active reports whether the loan still blocks a new request for the same book
func (s LoanStatus) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// ActiveStatuses lists the statuses counted as active loans
func ActiveStatuses() []LoanStatus {
	return []LoanStatus{StatusPending, StatusApproved}
}

// Transition reports the stock adjustment for moving a loan from one status
// to another, and whether that edge is allowed at all. Stock moves only on
// the approval edge (copy leaves the shelf) and on the exits from APPROVED
// or LATE to RETURNED (copy comes back). Re-applying the current status is
// a permitted no-op so repeated admin updates cannot drift the counter.
func Transition(from, to LoanStatus) (stockDelta int, ok bool) {
	if from == to {
		return 0, true
	}
	switch from {
	case StatusPending:
		switch to {
		case StatusApproved:
			return -1, true
		case StatusRejected:
			return 0, true
		}
	case StatusApproved:
		switch to {
		case StatusReturned:
			return 1, true
		case StatusLate:
			return 0, true
		}
	case StatusLate:
		if to == StatusReturned {
			return 1, true
		}
	}
	// REJECTED and RETURNED are terminal
	return 0, false
}

// BookLoan Model
type BookLoan struct {
	ID               uint       `gorm:"primaryKey" json:"id"`                          // Primary key
	UserID           uint       `gorm:"index;not null" json:"user_id"`                 // Borrower
	BookID           uint       `gorm:"index;not null" json:"book_id"`                 // Borrowed book
	BorrowDate       time.Time  `gorm:"not null" json:"borrow_date"`                   // Requested pickup date
	ReturnDate       time.Time  `gorm:"not null" json:"return_date"`                   // Due date
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty"`                  // Set when the copy comes back
	Status           LoanStatus `gorm:"size:20;not null;default:PENDING" json:"status"` // Lifecycle state
	Notes            string     `json:"notes,omitempty"`                               // Free-form borrower notes
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // Borrower summary for display
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"` // Book summary for display
}
