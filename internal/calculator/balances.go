package calculator

import (
	"sort"

	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
)

// PairDebt is an outstanding amount one member still has to pay another.
type PairDebt struct {
	// From is the debtor, To the creditor.
	From   string
	To     string
	Amount money.Money
}

// DebtEdge is a suggested transfer produced by SimplifyDebts.
type DebtEdge struct {
	From   string
	To     string
	Amount money.Money
}

// NetBalances computes each member's signed net position under the
// expense-splitting agreement: for every non-cancelled expense the payer is
// credited the full amount and each debtor is debited their split. A payer
// who is also a debtor nets to their un-shared portion. The result is
// zero-sum and independent of recorded payments; use Outstanding for what
// remains unpaid.
func NetBalances(expenses []models.Expense) map[string]money.Money {
	balances := make(map[string]money.Money)
	for _, e := range expenses {
		if e.Status == models.ExpenseCancelled {
			continue
		}
		balances[e.PayerID] = balances[e.PayerID].Add(e.Amount)
		for _, s := range e.Splits {
			balances[s.UserID] = balances[s.UserID].Sub(s.Amount)
		}
	}
	return balances
}

// Outstanding computes what each debtor still owes each payer: split
// amounts reduced by recorded payments, with fully paid splits and
// cancelled expenses excluded. paidTotals maps split id to the sum of its
// payments; splits absent from the map have received nothing.
func Outstanding(expenses []models.Expense, paidTotals map[string]money.Money) []PairDebt {
	type pair struct{ from, to string }
	owed := make(map[pair]money.Money)
	for _, e := range expenses {
		if e.Status == models.ExpenseCancelled {
			continue
		}
		for _, s := range e.Splits {
			if s.UserID == e.PayerID || s.Status == models.SplitPaid {
				continue
			}
			remaining := s.Amount.Sub(paidTotals[s.ID])
			if !remaining.IsPositive() {
				continue
			}
			k := pair{from: s.UserID, to: e.PayerID}
			owed[k] = owed[k].Add(remaining)
		}
	}

	debts := make([]PairDebt, 0, len(owed))
	for k, amt := range owed {
		debts = append(debts, PairDebt{From: k.from, To: k.to, Amount: amt})
	}
	sort.Slice(debts, func(i, j int) bool {
		if debts[i].From != debts[j].From {
			return debts[i].From < debts[j].From
		}
		return debts[i].To < debts[j].To
	})
	return debts
}

// SimplifyDebts reduces a set of net balances to a small list of transfers
// that would settle the group, greedily matching debtors against creditors.
// Balances must be zero-sum (as NetBalances produces).
func SimplifyDebts(balances map[string]money.Money) []DebtEdge {
	var creditors, debtors []models.Balance
	for userID, net := range balances {
		switch {
		case net.IsPositive():
			creditors = append(creditors, models.Balance{UserID: userID, Net: net})
		case net.IsNegative():
			debtors = append(debtors, models.Balance{UserID: userID, Net: net.Neg()})
		}
	}
	// Largest first, user id as tiebreak for deterministic output.
	byAmount := func(s []models.Balance) func(i, j int) bool {
		return func(i, j int) bool {
			if c := s[i].Net.Cmp(s[j].Net); c != 0 {
				return c > 0
			}
			return s[i].UserID < s[j].UserID
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].Net
		if creditors[j].Net.Cmp(amount) < 0 {
			amount = creditors[j].Net
		}
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{
				From:   debtors[i].UserID,
				To:     creditors[j].UserID,
				Amount: amount,
			})
		}
		debtors[i].Net = debtors[i].Net.Sub(amount)
		creditors[j].Net = creditors[j].Net.Sub(amount)
		if debtors[i].Net.IsZero() {
			i++
		}
		if creditors[j].Net.IsZero() {
			j++
		}
	}
	return edges
}
