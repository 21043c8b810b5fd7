// Package calculator holds the pure ledger math: split allocation, status
// derivation and balance computation. Nothing in this package performs I/O;
// services load state, call in here, and persist the results.
package calculator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
)

// Share is one caller-supplied (debtor, amount) pair. Whether shares are
// equal or custom is the caller's decision; the allocator only checks that
// they partition the expense amount exactly.
type Share struct {
	UserID string
	Amount money.Money
}

// Allocate validates the shares against the expense amount and the group's
// member list and materializes the splits. The payer's own share, if
// present, is created already fully paid: the payer settled it the moment
// they covered the whole expense, so no payment row is ever needed for it.
//
// Allocate has no side effects. The caller must persist the expense and
// all returned splits as a single atomic unit.
func Allocate(expenseAmount money.Money, payerID string, shares []Share, members []string) ([]models.Split, error) {
	if !expenseAmount.IsPositive() {
		return nil, &errs.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if len(shares) == 0 {
		return nil, &errs.ValidationError{Field: "shares", Reason: "at least one share required"}
	}

	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}
	if !memberSet[payerID] {
		return nil, &errs.ValidationError{
			Field:  "payer_id",
			Reason: fmt.Sprintf("%q is not a member of the group", payerID),
		}
	}

	seen := make(map[string]bool, len(shares))
	total := money.Zero
	for _, sh := range shares {
		if sh.UserID == "" {
			return nil, &errs.ValidationError{Field: "shares", Reason: "share with empty user id"}
		}
		if seen[sh.UserID] {
			return nil, &errs.ValidationError{
				Field:  "shares",
				Reason: fmt.Sprintf("duplicate share for user %q", sh.UserID),
			}
		}
		seen[sh.UserID] = true
		if sh.Amount.IsNegative() {
			return nil, &errs.ValidationError{
				Field:  "shares",
				Reason: fmt.Sprintf("negative share for user %q", sh.UserID),
			}
		}
		if !memberSet[sh.UserID] {
			return nil, &errs.ValidationError{
				Field:  "shares",
				Reason: fmt.Sprintf("user %q is not a member of the group", sh.UserID),
			}
		}
		total = total.Add(sh.Amount)
	}
	if !total.Equal(expenseAmount) {
		return nil, &errs.ValidationError{
			Field:  "shares",
			Reason: fmt.Sprintf("shares sum to %s, expense amount is %s", total, expenseAmount),
		}
	}

	splits := make([]models.Split, 0, len(shares))
	for _, sh := range shares {
		status := models.SplitUnpaid
		if sh.UserID == payerID {
			status = models.SplitPaid
		}
		splits = append(splits, models.Split{
			ID:     uuid.New().String(),
			UserID: sh.UserID,
			Amount: sh.Amount,
			Status: status,
		})
	}
	return splits, nil
}

// EqualShares partitions amount evenly across users, pushing the remainder
// cents onto the earliest users so the shares still sum exactly. It is a
// convenience for callers building an equal split; Allocate treats the
// result like any other custom share list.
func EqualShares(amount money.Money, users []string) ([]Share, error) {
	if len(users) == 0 {
		return nil, &errs.ValidationError{Field: "users", Reason: "at least one user required"}
	}
	cents := amount.Cents()
	n := int64(len(users))
	base := cents / n
	remainder := cents % n

	shares := make([]Share, len(users))
	for i, u := range users {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = Share{UserID: u, Amount: money.FromCents(c)}
	}
	return shares, nil
}
