package models

import (
	"time"

	"github.com/tallyup/tallyup/internal/money"
)

// ExpenseStatus is derived from the statuses of an expense's splits, except
// for StatusCancelled which is a terminal override set by group management.
type ExpenseStatus string

const (
	// ExpenseUnsettled means no split has received any payment.
	ExpenseUnsettled ExpenseStatus = "unsettled"
	// ExpensePartiallySettled means some but not all owed money is paid.
	ExpensePartiallySettled ExpenseStatus = "partially_settled"
	// ExpenseSettled means every split is fully paid.
	ExpenseSettled ExpenseStatus = "settled"
	// ExpenseCancelled is terminal and sticky; cancelled expenses are
	// excluded from balances and refuse settlement.
	ExpenseCancelled ExpenseStatus = "cancelled"
)

// SplitStatus advances unpaid -> partially_paid -> paid and never reverses.
type SplitStatus string

const (
	SplitUnpaid        SplitStatus = "unpaid"
	SplitPartiallyPaid SplitStatus = "partially_paid"
	SplitPaid          SplitStatus = "paid"
)

// Expense represents money one member paid on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid the full amount up front.
	PayerID string

	// Amount is the total paid; always positive and exactly equal to the
	// sum of the split amounts.
	Amount money.Money

	// Category is a free-form label such as "groceries" or "rent".
	Category string

	// Description is an optional human-readable note.
	Description string

	// OccurredAt is when the expense happened.
	OccurredAt time.Time

	// CreatedAt is when the expense was recorded.
	CreatedAt time.Time

	// Status is derived from the splits; see calculator.ExpenseStatusFor.
	Status ExpenseStatus

	// Splits are the per-debtor portions, one per participating member.
	Splits []Split
}

// Split is one debtor's portion of a single expense. Exactly one split
// exists per (expense, user) pair.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// ExpenseID is the parent expense.
	ExpenseID string

	// UserID is the debtor who owes this portion.
	UserID string

	// Amount owed; positive and never larger than the expense amount.
	Amount money.Money

	// Status is derived from recorded payments; see calculator.SplitStatusFor.
	// The payer's own split is born paid with no payment row.
	Status SplitStatus
}
