package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyup/tallyup/internal/calculator"
	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
)

func TestCreateExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	group := f.group(t, "alice", "bob")

	e, err := f.expenses.CreateExpense(ctx, CreateExpenseInput{
		GroupID:    group.ID,
		PayerID:    "alice",
		Amount:     money.MustParse("25.00"),
		Category:   "groceries",
		OccurredAt: time.Now(),
		Shares: []calculator.Share{
			{UserID: "alice", Amount: money.MustParse("12.50")},
			{UserID: "bob", Amount: money.MustParse("12.50")},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)

	got, err := f.expenses.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Category)
	require.Len(t, got.Splits, 2)
	for _, sp := range got.Splits {
		if sp.UserID == "alice" {
			assert.Equal(t, models.SplitPaid, sp.Status)
		} else {
			assert.Equal(t, models.SplitUnpaid, sp.Status)
		}
	}
}

func TestCreateExpenseRejectsBadShares(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	group := f.group(t, "alice", "bob")
	in := CreateExpenseInput{
		GroupID:    group.ID,
		PayerID:    "alice",
		Amount:     money.MustParse("25.00"),
		Category:   "general",
		OccurredAt: time.Now(),
		Shares: []calculator.Share{
			{UserID: "alice", Amount: money.MustParse("12.50")},
			{UserID: "bob", Amount: money.MustParse("12.49")},
		},
	}
	_, err := f.expenses.CreateExpense(ctx, in)
	assert.ErrorIs(t, err, errs.ErrValidation)

	// Nothing persisted for the group.
	list, err := f.expenses.ListGroupExpenses(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	in.GroupID = "missing"
	_, err = f.expenses.CreateExpense(ctx, in)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateExpensePayerOnlyDebtorIsSettled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	group := f.group(t, "alice", "bob")
	e, err := f.expenses.CreateExpense(ctx, CreateExpenseInput{
		GroupID:    group.ID,
		PayerID:    "alice",
		Amount:     money.MustParse("9.99"),
		Category:   "general",
		OccurredAt: time.Now(),
		Shares: []calculator.Share{
			{UserID: "alice", Amount: money.MustParse("9.99")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseSettled, e.Status)
}
