// Package storage provides abstractions for persistent ledger state.
package storage

import (
	"context"

	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
)

// Store defines the persistence contract the ledger services depend on.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer. Implementations must provide
// atomic multi-row commit/rollback and serialize concurrent writers on the
// same split (see Settle).
type Store interface {
	// CreateGroup persists a group together with its member rows.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its member user ids.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// DeleteGroup removes the group and everything it owns in dependency
	// order (payments, splits, expenses, members, group) as one atomic
	// operation. It does not check ledger state; that is the exit guard's
	// job.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense and all of its splits as a single
	// atomic unit; an expense without its splits is never a visible state.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves all of a group's expenses with splits.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// CancelExpense applies the terminal cancelled status. It is the only
	// status write not produced by derivation and it never reverses.
	CancelExpense(ctx context.Context, expenseID string) error

	// PaidTotalsByGroup sums recorded payments per split across the group.
	// Splits with no payments are absent from the map.
	PaidTotalsByGroup(ctx context.Context, groupID string) (map[string]money.Money, error)

	// ListPaymentsByGroup returns the group's payment history, newest first.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error)

	// Settle runs fn inside one write transaction. The transaction holds
	// the write lock from the start, so paid totals read through the
	// SettleTx reflect all previously committed settlements; a concurrent
	// Settle on the same splits blocks until this one finishes. If fn
	// returns an error the transaction rolls back with zero side effects.
	Settle(ctx context.Context, fn func(tx SettleTx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// SettleTx exposes the row operations available inside a settlement
// transaction.
type SettleTx interface {
	// Expense retrieves an expense with its splits at the transaction's
	// view of committed state.
	Expense(expenseID string) (*models.Expense, error)

	// PaidTotal sums the recorded payments against one split.
	PaidTotal(splitID string) (money.Money, error)

	// InsertPayment appends a payment row. Payments are never updated.
	InsertPayment(payment *models.Payment) error

	// SetSplitStatus writes a derived split status.
	SetSplitStatus(splitID string, status models.SplitStatus) error

	// SetExpenseStatus writes a derived expense status.
	SetExpenseStatus(expenseID string, status models.ExpenseStatus) error
}
