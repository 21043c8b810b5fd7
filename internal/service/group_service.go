package service

import (
	"context"
	"log/slog"

	"github.com/tallyup/tallyup/internal/calculator"
	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
	"github.com/tallyup/tallyup/internal/storage"
)

// DenyReason discriminates why the exit guard refused an operation.
type DenyReason string

const (
	// DenyCreator: group creators must delete the group, not leave it.
	DenyCreator DenyReason = "creator"
	// DenyOwes: the member still owes money on their splits.
	DenyOwes DenyReason = "owes"
	// DenyOwed: others still owe the member on expenses they paid.
	DenyOwed DenyReason = "owed"
	// DenyUnsettled: some split in the group is not fully paid.
	DenyUnsettled DenyReason = "unsettled"
)

// Decision is the exit guard's answer. When denied, Reason discriminates
// the cause and Amount carries the outstanding money where one applies, so
// a UI can say "you still owe 30.00" rather than a generic refusal.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Amount  money.Money
}

func allowed() Decision { return Decision{Allowed: true} }

// GroupService owns group lifecycle as far as the ledger is concerned: it
// guards leaving and deletion on outstanding balances, and performs the
// cascading teardown. Membership workflow beyond that lives elsewhere.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup persists a group. The creator is always a member.
func (s *GroupService) CreateGroup(ctx context.Context, name, createdBy string, members []string) (*models.Group, error) {
	if name == "" {
		return nil, &errs.ValidationError{Field: "name", Reason: "required"}
	}
	if createdBy == "" {
		return nil, &errs.ValidationError{Field: "created_by", Reason: "required"}
	}
	group := &models.Group{Name: name, CreatedBy: createdBy}
	seen := map[string]bool{}
	for _, m := range append([]string{createdBy}, members...) {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		group.Members = append(group.Members, m)
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}
	slog.Info("group created", "group_id", group.ID, "members", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group with its member user ids.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// CanLeave decides whether a member may leave the group. Creators may not
// leave at all; everyone else may leave once they neither owe anything on
// their own splits nor are owed anything on expenses they paid.
func (s *GroupService) CanLeave(ctx context.Context, groupID, userID string) (Decision, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return Decision{}, err
	}
	if !group.HasMember(userID) {
		return Decision{}, &errs.NotFoundError{Entity: "member", ID: userID}
	}
	if group.CreatedBy == userID {
		return Decision{Reason: DenyCreator}, nil
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return Decision{}, err
	}
	paidTotals, err := s.store.PaidTotalsByGroup(ctx, groupID)
	if err != nil {
		return Decision{}, err
	}

	if owes := owedByUser(expenses, paidTotals, userID); owes.IsPositive() {
		return Decision{Reason: DenyOwes, Amount: owes}, nil
	}
	if owed := owedToUser(expenses, paidTotals, userID); owed.IsPositive() {
		return Decision{Reason: DenyOwed, Amount: owed}, nil
	}
	return allowed(), nil
}

// CanDeleteGroup decides whether the group may be deleted: only once every
// split on every non-cancelled expense is fully paid.
func (s *GroupService) CanDeleteGroup(ctx context.Context, groupID string) (Decision, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return Decision{}, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return Decision{}, err
	}
	paidTotals, err := s.store.PaidTotalsByGroup(ctx, groupID)
	if err != nil {
		return Decision{}, err
	}

	unpaid := money.Zero
	for _, e := range expenses {
		if e.Status == models.ExpenseCancelled {
			continue
		}
		for _, sp := range e.Splits {
			if sp.Status == models.SplitPaid {
				continue
			}
			unpaid = unpaid.Add(sp.Amount.Sub(paidTotals[sp.ID]))
		}
	}
	if unpaid.IsPositive() {
		return Decision{Reason: DenyUnsettled, Amount: unpaid}, nil
	}
	return allowed(), nil
}

// DeleteGroup tears the group down after the exit guard allows it:
// payments, then splits, then expenses, then membership, as one atomic
// operation.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	decision, err := s.CanDeleteGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &errs.PreconditionError{
			Reason: "group has unsettled splits totalling " + decision.Amount.String(),
		}
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}
	slog.Info("group deleted", "group_id", groupID)
	return nil
}

// owedByUser sums what userID still has to pay on their own splits across
// non-cancelled expenses.
func owedByUser(expenses []models.Expense, paidTotals map[string]money.Money, userID string) money.Money {
	total := money.Zero
	for _, d := range calculator.Outstanding(expenses, paidTotals) {
		if d.From == userID {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// owedToUser sums what others still owe userID on unsettled expenses they
// paid.
func owedToUser(expenses []models.Expense, paidTotals map[string]money.Money, userID string) money.Money {
	total := money.Zero
	for _, d := range calculator.Outstanding(expenses, paidTotals) {
		if d.To == userID {
			total = total.Add(d.Amount)
		}
	}
	return total
}
