package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
	"github.com/tallyup/tallyup/internal/storage"
)

// Settle runs fn inside one immediate write transaction. The write lock is
// taken when the transaction begins, so a concurrent settlement touching
// the same splits blocks here until this one commits or rolls back, and
// paid totals read through the transaction always reflect committed state.
func (s *SQLiteStore) Settle(ctx context.Context, fn func(tx storage.SettleTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&settleTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// settleTx implements storage.SettleTx over one *sql.Tx.
type settleTx struct {
	ctx context.Context
	tx  *sql.Tx
}

var _ storage.SettleTx = (*settleTx)(nil)

func (t *settleTx) Expense(expenseID string) (*models.Expense, error) {
	return expenseByID(t.ctx, t.tx, expenseID)
}

func (t *settleTx) PaidTotal(splitID string) (money.Money, error) {
	var cents sql.NullInt64
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT SUM(amount_cents) FROM payments WHERE split_id = ?",
		splitID,
	).Scan(&cents)
	if err != nil {
		return money.Zero, fmt.Errorf("failed to sum payments for split: %w", err)
	}
	if !cents.Valid {
		return money.Zero, nil
	}
	return money.FromCents(cents.Int64), nil
}

func (t *settleTx) InsertPayment(payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO payments (id, split_id, amount_cents, paid_at) VALUES (?, ?, ?, ?)",
		payment.ID, payment.SplitID, payment.Amount.Cents(), payment.PaidAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (t *settleTx) SetSplitStatus(splitID string, status models.SplitStatus) error {
	_, err := t.tx.ExecContext(t.ctx,
		"UPDATE splits SET status = ? WHERE id = ?",
		string(status), splitID,
	)
	if err != nil {
		return fmt.Errorf("failed to update split status: %w", err)
	}
	return nil
}

func (t *settleTx) SetExpenseStatus(expenseID string, status models.ExpenseStatus) error {
	_, err := t.tx.ExecContext(t.ctx,
		"UPDATE expenses SET status = ? WHERE id = ?",
		string(status), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense status: %w", err)
	}
	return nil
}
