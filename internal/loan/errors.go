package loan

import "errors"

// Typed failures returned by the lifecycle service. Handlers map these to
// HTTP statuses at the boundary; nothing here is retried.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrLoanNotFound  = errors.New("loan not found")
	ErrOutOfStock    = errors.New("no copies available")
	ErrLoanExists    = errors.New("an active loan already exists for this book")
	ErrNotOwner      = errors.New("loan belongs to another member")
	ErrInvalidState  = errors.New("transition not allowed from current status")
	ErrInvalidStatus = errors.New("unknown loan status")
	ErrInvalidDates  = errors.New("return date must not be before borrow date")
)
