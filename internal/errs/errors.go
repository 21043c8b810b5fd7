// Package errs defines the error taxonomy shared across the ledger.
// Sentinels classify failures for errors.Is checks; structured types wrap
// them and carry the discriminated reason a caller needs to explain the
// failure ("you still owe 30.00" versus "request malformed").
package errs

import (
	"errors"
	"fmt"

	"github.com/tallyup/tallyup/internal/money"
)

var (
	// ErrValidation marks malformed input, rejected before any mutation.
	// Fully recoverable by resubmitting corrected input.
	ErrValidation = errors.New("validation")

	// ErrNotFound marks a referenced group, expense, split or member that
	// does not exist.
	ErrNotFound = errors.New("not_found")

	// ErrPrecondition marks a well-formed request the current ledger state
	// forbids: non-member payer, cancelled expense, overpayment.
	ErrPrecondition = errors.New("precondition")

	// ErrInvariant marks derived state that should be impossible given the
	// inputs. It indicates a bug or corrupted prior state; the enclosing
	// transaction must be rolled back, never clamped.
	ErrInvariant = errors.New("invariant")
)

// ValidationError carries the field and reason for a malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError identifies the missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PreconditionError carries the reason a valid request was refused.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// OverpaymentError reports a settlement item that would push a split's paid
// total past its owed amount. The whole batch it belongs to is rejected.
type OverpaymentError struct {
	ExpenseID string
	SplitID   string
	Owed      money.Money
	Paid      money.Money
	Attempted money.Money
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s on split %s exceeds owed amount (owed %s, already paid %s)",
		e.Attempted, e.SplitID, e.Owed, e.Paid)
}

func (e *OverpaymentError) Unwrap() error { return ErrPrecondition }

// OutstandingBalanceError explains an exit-guard denial in terms of money
// still moving through the group.
type OutstandingBalanceError struct {
	UserID string
	// Owes is what the user still has to pay on their own splits.
	Owes money.Money
	// OwedTo is what others still owe the user on expenses they paid.
	OwedTo money.Money
}

func (e *OutstandingBalanceError) Error() string {
	switch {
	case e.Owes.IsPositive():
		return fmt.Sprintf("user %s still owes %s", e.UserID, e.Owes)
	case e.OwedTo.IsPositive():
		return fmt.Sprintf("user %s is still owed %s", e.UserID, e.OwedTo)
	default:
		return fmt.Sprintf("user %s has outstanding balances", e.UserID)
	}
}

func (e *OutstandingBalanceError) Unwrap() error { return ErrPrecondition }

// InvariantError describes impossible derived state.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// IsClientError reports whether the caller can fix the request and retry.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrPrecondition)
}
