// Package service orchestrates the ledger: it loads state through the
// storage contract, runs the pure calculator math, and persists results
// atomically.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tallyup/tallyup/internal/calculator"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
	"github.com/tallyup/tallyup/internal/storage"
)

// ExpenseService creates and reads expenses. Creation goes through the
// split allocator so every persisted expense satisfies the splitting
// invariants from the moment it exists.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates an ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpenseInput carries everything needed to record an expense. Shares
// are the caller's decision (equal or custom); calculator.EqualShares can
// build the common case.
type CreateExpenseInput struct {
	GroupID     string
	PayerID     string
	Amount      money.Money
	Category    string
	Description string
	OccurredAt  time.Time
	Shares      []calculator.Share
}

// CreateExpense validates the input against the group's membership,
// materializes the splits and persists expense plus splits as one atomic
// unit. The payer's own share comes back already paid.
func (s *ExpenseService) CreateExpense(ctx context.Context, in CreateExpenseInput) (*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}

	splits, err := calculator.Allocate(in.Amount, in.PayerID, in.Shares, group.Members)
	if err != nil {
		slog.Warn("expense allocation rejected", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	statuses := make([]models.SplitStatus, len(splits))
	for i, sp := range splits {
		statuses[i] = sp.Status
	}

	expense := &models.Expense{
		GroupID:     in.GroupID,
		PayerID:     in.PayerID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		OccurredAt:  in.OccurredAt,
		Status:      calculator.ExpenseStatusFor(models.ExpenseUnsettled, statuses),
		Splits:      splits,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	expensesCreatedTotal.Inc()
	slog.Info("expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"payer_id", expense.PayerID,
		"amount", expense.Amount.String(),
		"splits", len(expense.Splits),
	)
	return expense, nil
}

// GetExpense retrieves an expense with its splits.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListGroupExpenses retrieves a group's expenses with splits, oldest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// CancelExpense applies the terminal cancelled status on behalf of group
// management. Cancelling is idempotent and never reverses: the derivation
// functions keep a cancelled expense cancelled regardless of later payments
// against its history, and cancelled expenses drop out of balances.
func (s *ExpenseService) CancelExpense(ctx context.Context, expenseID string) error {
	if err := s.store.CancelExpense(ctx, expenseID); err != nil {
		return err
	}
	slog.Info("expense cancelled", "expense_id", expenseID)
	return nil
}
