package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyup/tallyup/internal/calculator"
	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
	"github.com/tallyup/tallyup/internal/storage"
)

// SettlementService applies settle-up payments. A settlement targets
// expenses by id; the paying member's split on each expense is resolved
// internally. The whole batch commits or none of it does.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a SettlementService with the given storage
// backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// SettleItem is one payment to apply: amount against the payer's split on
// the referenced expense.
type SettleItem struct {
	ExpenseID string
	Amount    money.Money
}

// SettlementResult reports what a settlement changed.
type SettlementResult struct {
	// TotalSettled is the sum of the applied payments. Items skipped for a
	// missing split contribute nothing.
	TotalSettled money.Money

	// SplitStatuses maps each affected split id to its new status.
	SplitStatuses map[string]models.SplitStatus

	// ExpenseStatuses maps each affected expense id to its new status.
	ExpenseStatuses map[string]models.ExpenseStatus
}

// Settle applies the batch of payments from payerID to recipientID as one
// atomic unit. Preconditions: both are current group members, every
// referenced expense belongs to the group, was paid by recipientID and is
// not cancelled. An item whose amount would push a split's paid total past
// its owed amount rejects the entire batch; nothing is persisted.
//
// Items referencing an expense where payerID has no split are skipped:
// callers may hold stale expense lists, and skipping is harmless because
// nothing is owed there.
func (s *SettlementService) Settle(ctx context.Context, groupID, payerID, recipientID string, items []SettleItem, paidAt time.Time) (*SettlementResult, error) {
	start := time.Now()
	result, err := s.settle(ctx, groupID, payerID, recipientID, items, paidAt)
	settleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		settlementsTotal.WithLabelValues("rejected").Inc()
		slog.Warn("settlement rejected",
			"group_id", groupID,
			"payer_id", payerID,
			"recipient_id", recipientID,
			"error", err,
		)
		return nil, err
	}
	settlementsTotal.WithLabelValues("applied").Inc()
	slog.Info("settlement applied",
		"group_id", groupID,
		"payer_id", payerID,
		"recipient_id", recipientID,
		"total", result.TotalSettled.String(),
		"splits", len(result.SplitStatuses),
	)
	return result, nil
}

func (s *SettlementService) settle(ctx context.Context, groupID, payerID, recipientID string, items []SettleItem, paidAt time.Time) (*SettlementResult, error) {
	if len(items) == 0 {
		return nil, &errs.ValidationError{Field: "items", Reason: "at least one item required"}
	}
	if payerID == recipientID {
		return nil, &errs.ValidationError{Field: "recipient_id", Reason: "payer and recipient must differ"}
	}
	for _, it := range items {
		if !it.Amount.IsPositive() {
			return nil, &errs.ValidationError{
				Field:  "items",
				Reason: fmt.Sprintf("non-positive amount %s for expense %s", it.Amount, it.ExpenseID),
			}
		}
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(payerID) {
		return nil, &errs.PreconditionError{Reason: fmt.Sprintf("payer %s is not a member of group %s", payerID, groupID)}
	}
	if !group.HasMember(recipientID) {
		return nil, &errs.PreconditionError{Reason: fmt.Sprintf("recipient %s is not a member of group %s", recipientID, groupID)}
	}

	result := &SettlementResult{
		TotalSettled:    money.Zero,
		SplitStatuses:   make(map[string]models.SplitStatus),
		ExpenseStatuses: make(map[string]models.ExpenseStatus),
	}

	// All validation against paid totals happens inside the write
	// transaction, after the write lock is held, so a racing settlement on
	// the same split cannot sneak past the overpayment bound.
	applied := 0
	err = s.store.Settle(ctx, func(tx storage.SettleTx) error {
		for _, it := range items {
			expense, err := tx.Expense(it.ExpenseID)
			if err != nil {
				return err
			}
			if expense.GroupID != groupID {
				return &errs.PreconditionError{
					Reason: fmt.Sprintf("expense %s does not belong to group %s", it.ExpenseID, groupID),
				}
			}
			if expense.PayerID != recipientID {
				return &errs.PreconditionError{
					Reason: fmt.Sprintf("expense %s was not paid by %s", it.ExpenseID, recipientID),
				}
			}
			if expense.Status == models.ExpenseCancelled {
				return &errs.PreconditionError{
					Reason: fmt.Sprintf("expense %s is cancelled", it.ExpenseID),
				}
			}

			var split *models.Split
			for i := range expense.Splits {
				if expense.Splits[i].UserID == payerID {
					split = &expense.Splits[i]
					break
				}
			}
			if split == nil {
				// Stale reference from the caller; nothing owed here.
				slog.Debug("settlement item skipped, payer has no split",
					"expense_id", it.ExpenseID, "payer_id", payerID)
				continue
			}

			paid, err := tx.PaidTotal(split.ID)
			if err != nil {
				return err
			}
			newPaid := paid.Add(it.Amount)
			if newPaid.Cmp(split.Amount) > 0 {
				return &errs.OverpaymentError{
					ExpenseID: expense.ID,
					SplitID:   split.ID,
					Owed:      split.Amount,
					Paid:      paid,
					Attempted: it.Amount,
				}
			}

			if err := tx.InsertPayment(&models.Payment{
				SplitID: split.ID,
				Amount:  it.Amount,
				PaidAt:  paidAt,
			}); err != nil {
				return err
			}

			splitStatus, err := calculator.SplitStatusFor(newPaid, split.Amount)
			if err != nil {
				return err
			}
			if err := tx.SetSplitStatus(split.ID, splitStatus); err != nil {
				return err
			}
			split.Status = splitStatus

			statuses := make([]models.SplitStatus, len(expense.Splits))
			for i, sp := range expense.Splits {
				statuses[i] = sp.Status
			}
			expenseStatus := calculator.ExpenseStatusFor(expense.Status, statuses)
			if err := tx.SetExpenseStatus(expense.ID, expenseStatus); err != nil {
				return err
			}

			applied++
			result.TotalSettled = result.TotalSettled.Add(it.Amount)
			result.SplitStatuses[split.ID] = splitStatus
			result.ExpenseStatuses[expense.ID] = expenseStatus
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	paymentsAppliedTotal.Add(float64(applied))
	return result, nil
}

// ListGroupPayments returns the group's payment history, newest first.
func (s *SettlementService) ListGroupPayments(ctx context.Context, groupID string) ([]models.Payment, error) {
	return s.store.ListPaymentsByGroup(ctx, groupID)
}
