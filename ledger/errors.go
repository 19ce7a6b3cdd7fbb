package ledger

import "errors"

// Every failure an engine operation can report. Callers match with errors.Is;
// operations may wrap these with extra context but never invent new categories.
var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrInstrumentNotFound    = errors.New("instrument not found")
	ErrDuplicateName         = errors.New("name already registered")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrLoanLimitExceeded     = errors.New("loan limit exceeded")
)
