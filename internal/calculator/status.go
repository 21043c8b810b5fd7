package calculator

import (
	"fmt"

	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
)

// SplitStatusFor derives a split's status from the total paid so far
// against the owed amount. Paid totals above the owed amount are impossible
// under normal operation; they mean a check was bypassed or prior state is
// corrupt, so the caller must abort rather than clamp.
func SplitStatusFor(paidSoFar, owed money.Money) (models.SplitStatus, error) {
	switch {
	case paidSoFar.Cmp(owed) > 0:
		return "", &errs.InvariantError{
			Reason: fmt.Sprintf("paid total %s exceeds owed amount %s", paidSoFar, owed),
		}
	case paidSoFar.IsZero():
		return models.SplitUnpaid, nil
	case paidSoFar.Equal(owed):
		return models.SplitPaid, nil
	default:
		return models.SplitPartiallyPaid, nil
	}
}

// ExpenseStatusFor derives an expense's status from its full split set.
// Cancellation is sticky: once an expense is cancelled the derivation never
// moves it back to an active status.
func ExpenseStatusFor(current models.ExpenseStatus, splits []models.SplitStatus) models.ExpenseStatus {
	if current == models.ExpenseCancelled {
		return models.ExpenseCancelled
	}

	allPaid := true
	anyPaid := false
	for _, s := range splits {
		switch s {
		case models.SplitPaid:
			anyPaid = true
		case models.SplitPartiallyPaid:
			anyPaid = true
			allPaid = false
		default:
			allPaid = false
		}
	}

	switch {
	case len(splits) == 0 || allPaid:
		return models.ExpenseSettled
	case anyPaid:
		return models.ExpensePartiallySettled
	default:
		return models.ExpenseUnsettled
	}
}
