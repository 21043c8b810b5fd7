package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/models"
)

// CreateGroup persists a group and its member rows in one transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CreatedBy, group.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, userID := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id) VALUES (?, ?)",
			group.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with its member user ids.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, &errs.NotFoundError{Entity: "group", ID: groupID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedAt = time.Unix(createdAt, 0)

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return group, nil
}

// DeleteGroup cascade-removes payments, splits, expenses, members and the
// group row, in that dependency order, as one atomic operation.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err == sql.ErrNoRows {
		return &errs.NotFoundError{Entity: "group", ID: groupID}
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	steps := []string{
		`DELETE FROM payments WHERE split_id IN (
			SELECT s.id FROM splits s
			JOIN expenses e ON e.id = s.expense_id
			WHERE e.group_id = ?)`,
		"DELETE FROM splits WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ?)",
		"DELETE FROM expenses WHERE group_id = ?",
		"DELETE FROM group_members WHERE group_id = ?",
		"DELETE FROM groups WHERE id = ?",
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt, groupID); err != nil {
			return fmt.Errorf("failed to delete group rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
