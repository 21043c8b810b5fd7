package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
)

// CreateExpense persists an expense and all of its splits in one
// transaction; a partially persisted expense is never visible.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, amount_cents, category, description, occurred_at, created_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Amount.Cents(),
		expense.Category, expense.Description, expense.OccurredAt.Unix(),
		expense.CreatedAt.Unix(), string(expense.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Splits {
		split := &expense.Splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO splits (id, expense_id, user_id, amount_cents, status) VALUES (?, ?, ?, ?, ?)",
			split.ID, split.ExpenseID, split.UserID, split.Amount.Cents(), string(split.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return expenseByID(ctx, s.db, expenseID)
}

// ListExpensesByGroup retrieves all of a group's expenses with splits,
// oldest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount_cents, category, description, occurred_at, created_at, status
		 FROM expenses WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		splits, err := splitsForExpense(ctx, s.db, expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Splits = splits
	}
	return expenses, nil
}

// CancelExpense applies the terminal cancelled status.
func (s *SQLiteStore) CancelExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET status = ? WHERE id = ?",
		string(models.ExpenseCancelled), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check cancel result: %w", err)
	}
	if n == 0 {
		return &errs.NotFoundError{Entity: "expense", ID: expenseID}
	}
	return nil
}

// PaidTotalsByGroup sums payments per split across the group.
func (s *SQLiteStore) PaidTotalsByGroup(ctx context.Context, groupID string) (map[string]money.Money, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.split_id, SUM(p.amount_cents)
		 FROM payments p
		 JOIN splits sp ON sp.id = p.split_id
		 JOIN expenses e ON e.id = sp.expense_id
		 WHERE e.group_id = ?
		 GROUP BY p.split_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]money.Money)
	for rows.Next() {
		var splitID string
		var cents int64
		if err := rows.Scan(&splitID, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan payment total: %w", err)
		}
		totals[splitID] = money.FromCents(cents)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment totals: %w", err)
	}
	return totals, nil
}

// ListPaymentsByGroup returns the group's payment history, newest first.
func (s *SQLiteStore) ListPaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.split_id, p.amount_cents, p.paid_at
		 FROM payments p
		 JOIN splits sp ON sp.id = p.split_id
		 JOIN expenses e ON e.id = sp.expense_id
		 WHERE e.group_id = ?
		 ORDER BY p.paid_at DESC, p.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var cents, paidAt int64
		if err := rows.Scan(&p.ID, &p.SplitID, &cents, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Amount = money.FromCents(cents)
		p.PaidAt = time.Unix(paidAt, 0)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// querier covers *sql.DB and *sql.Tx so expense reads work inside and
// outside settlement transactions.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var cents, occurredAt, createdAt int64
	var status string
	err := row.Scan(&e.ID, &e.GroupID, &e.PayerID, &cents, &e.Category,
		&e.Description, &occurredAt, &createdAt, &status)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}
	e.Amount = money.FromCents(cents)
	e.OccurredAt = time.Unix(occurredAt, 0)
	e.CreatedAt = time.Unix(createdAt, 0)
	e.Status = models.ExpenseStatus(status)
	return e, nil
}

func expenseByID(ctx context.Context, q querier, expenseID string) (*models.Expense, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, amount_cents, category, description, occurred_at, created_at, status
		 FROM expenses WHERE id = ?`,
		expenseID,
	)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &errs.NotFoundError{Entity: "expense", ID: expenseID}
		}
		return nil, err
	}
	e.Splits, err = splitsForExpense(ctx, q, expenseID)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func splitsForExpense(ctx context.Context, q querier, expenseID string) ([]models.Split, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, expense_id, user_id, amount_cents, status FROM splits WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var sp models.Split
		var cents int64
		var status string
		if err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.UserID, &cents, &status); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		sp.Amount = money.FromCents(cents)
		sp.Status = models.SplitStatus(status)
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}
