package service

import (
	"context"

	"github.com/tallyup/tallyup/internal/calculator"
	"github.com/tallyup/tallyup/internal/money"
	"github.com/tallyup/tallyup/internal/storage"
)

// BalanceService exposes the two read paths over a group's ledger: the
// agreement balance (what the splitting agreement says each member is owed
// or owes, regardless of payments) and the outstanding amounts (what is
// still unpaid after recorded payments). Dashboards want the former;
// settle-up targeting wants the latter.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a BalanceService with the given storage backend.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// GroupBalances returns each member's signed net position under the
// splitting agreement. The map is zero-sum and empty for a group with no
// expenses.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID string) (map[string]money.Money, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.NetBalances(expenses), nil
}

// GroupOutstanding returns every still-unpaid debtor-to-creditor amount in
// the group.
func (s *BalanceService) GroupOutstanding(ctx context.Context, groupID string) ([]calculator.PairDebt, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	paidTotals, err := s.store.PaidTotalsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.Outstanding(expenses, paidTotals), nil
}

// OutstandingBetween returns what debtorID still owes creditorID.
func (s *BalanceService) OutstandingBetween(ctx context.Context, groupID, debtorID, creditorID string) (money.Money, error) {
	debts, err := s.GroupOutstanding(ctx, groupID)
	if err != nil {
		return money.Zero, err
	}
	total := money.Zero
	for _, d := range debts {
		if d.From == debtorID && d.To == creditorID {
			total = total.Add(d.Amount)
		}
	}
	return total, nil
}

// SuggestedTransfers reduces the group's agreement balances to a minimal
// set of transfers that would settle everyone up.
func (s *BalanceService) SuggestedTransfers(ctx context.Context, groupID string) ([]calculator.DebtEdge, error) {
	balances, err := s.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.SimplifyDebts(balances), nil
}
