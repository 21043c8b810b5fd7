package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
	"github.com/tallyup/tallyup/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedGroup(t *testing.T, store *SQLiteStore, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{
		Name:      "trip",
		CreatedBy: members[0],
		Members:   members,
	}
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group
}

func seedExpense(t *testing.T, store *SQLiteStore, groupID, payerID string, amount string, shares map[string]string) *models.Expense {
	t.Helper()
	e := &models.Expense{
		GroupID:    groupID,
		PayerID:    payerID,
		Amount:     money.MustParse(amount),
		Category:   "general",
		OccurredAt: time.Now(),
		Status:     models.ExpenseUnsettled,
	}
	for userID, amt := range shares {
		status := models.SplitUnpaid
		if userID == payerID {
			status = models.SplitPaid
		}
		e.Splits = append(e.Splits, models.Split{
			UserID: userID,
			Amount: money.MustParse(amt),
			Status: status,
		})
	}
	require.NoError(t, store.CreateExpense(context.Background(), e))
	return e
}

func TestGroupRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := seedGroup(t, store, "alice", "bob")

	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "trip", got.Name)
	assert.Equal(t, "alice", got.CreatedBy)
	assert.Equal(t, []string{"alice", "bob"}, got.Members)

	_, err = store.GetGroup(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestExpenseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := seedGroup(t, store, "alice", "bob")
	e := seedExpense(t, store, group.ID, "alice", "20.00",
		map[string]string{"alice": "10.00", "bob": "10.00"})

	got, err := store.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.GroupID)
	assert.True(t, got.Amount.Equal(money.MustParse("20.00")))
	require.Len(t, got.Splits, 2)
	// Splits come back sorted by user id.
	assert.Equal(t, "alice", got.Splits[0].UserID)
	assert.Equal(t, models.SplitPaid, got.Splits[0].Status)
	assert.Equal(t, "bob", got.Splits[1].UserID)
	assert.Equal(t, models.SplitUnpaid, got.Splits[1].Status)

	list, err := store.ListExpensesByGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Splits, 2)
}

func TestCreateExpenseRejectsDuplicateDebtor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := seedGroup(t, store, "alice", "bob")
	e := &models.Expense{
		GroupID:    group.ID,
		PayerID:    "alice",
		Amount:     money.MustParse("10.00"),
		Category:   "general",
		OccurredAt: time.Now(),
		Status:     models.ExpenseUnsettled,
		Splits: []models.Split{
			{UserID: "bob", Amount: money.MustParse("5.00"), Status: models.SplitUnpaid},
			{UserID: "bob", Amount: money.MustParse("5.00"), Status: models.SplitUnpaid},
		},
	}
	// The (expense_id, user_id) unique constraint backs invariant "one
	// split per debtor" even if a caller bypasses the allocator.
	err := store.CreateExpense(ctx, e)
	require.Error(t, err)

	// The failed transaction must leave nothing behind.
	_, err = store.GetExpense(ctx, e.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCancelExpense(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := seedGroup(t, store, "alice", "bob")
	e := seedExpense(t, store, group.ID, "alice", "10.00",
		map[string]string{"bob": "10.00"})

	require.NoError(t, store.CancelExpense(ctx, e.ID))
	got, err := store.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseCancelled, got.Status)

	assert.ErrorIs(t, store.CancelExpense(ctx, "missing"), errs.ErrNotFound)
}

func TestSettleTransaction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := seedGroup(t, store, "alice", "bob")
	e := seedExpense(t, store, group.ID, "alice", "20.00",
		map[string]string{"alice": "10.00", "bob": "10.00"})

	var bobSplit string
	for _, sp := range e.Splits {
		if sp.UserID == "bob" {
			bobSplit = sp.ID
		}
	}

	err := store.Settle(ctx, func(tx storage.SettleTx) error {
		paid, err := tx.PaidTotal(bobSplit)
		require.NoError(t, err)
		assert.True(t, paid.IsZero())

		err = tx.InsertPayment(&models.Payment{
			SplitID: bobSplit,
			Amount:  money.MustParse("4.00"),
			PaidAt:  time.Now(),
		})
		require.NoError(t, err)

		// The transaction sees its own insert.
		paid, err = tx.PaidTotal(bobSplit)
		require.NoError(t, err)
		assert.True(t, paid.Equal(money.MustParse("4.00")))

		require.NoError(t, tx.SetSplitStatus(bobSplit, models.SplitPartiallyPaid))
		return tx.SetExpenseStatus(e.ID, models.ExpensePartiallySettled)
	})
	require.NoError(t, err)

	totals, err := store.PaidTotalsByGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.True(t, totals[bobSplit].Equal(money.MustParse("4.00")))

	payments, err := store.ListPaymentsByGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, bobSplit, payments[0].SplitID)
}

func TestSettleRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := seedGroup(t, store, "alice", "bob")
	e := seedExpense(t, store, group.ID, "alice", "20.00",
		map[string]string{"bob": "20.00"})

	err := store.Settle(ctx, func(tx storage.SettleTx) error {
		require.NoError(t, tx.InsertPayment(&models.Payment{
			SplitID: e.Splits[0].ID,
			Amount:  money.MustParse("5.00"),
			PaidAt:  time.Now(),
		}))
		return &errs.PreconditionError{Reason: "forced failure"}
	})
	require.ErrorIs(t, err, errs.ErrPrecondition)

	totals, err := store.PaidTotalsByGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestDeleteGroupCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := seedGroup(t, store, "alice", "bob")
	e := seedExpense(t, store, group.ID, "alice", "20.00",
		map[string]string{"alice": "10.00", "bob": "10.00"})

	require.NoError(t, store.Settle(ctx, func(tx storage.SettleTx) error {
		return tx.InsertPayment(&models.Payment{
			SplitID: e.Splits[0].ID,
			Amount:  money.MustParse("10.00"),
			PaidAt:  time.Now(),
		})
	}))

	require.NoError(t, store.DeleteGroup(ctx, group.ID))

	_, err := store.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = store.GetExpense(ctx, e.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	payments, err := store.ListPaymentsByGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	assert.ErrorIs(t, store.DeleteGroup(ctx, group.ID), errs.ErrNotFound)
}
