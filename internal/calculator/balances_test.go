package calculator

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/money"
)

func expense(payerID, amount string, shares map[string]string) models.Expense {
	e := models.Expense{
		ID:      "exp-" + payerID + "-" + amount,
		PayerID: payerID,
		Amount:  money.MustParse(amount),
		Status:  models.ExpenseUnsettled,
	}
	for userID, amt := range shares {
		status := models.SplitUnpaid
		if userID == payerID {
			status = models.SplitPaid
		}
		e.Splits = append(e.Splits, models.Split{
			ID:        "split-" + e.ID + "-" + userID,
			ExpenseID: e.ID,
			UserID:    userID,
			Amount:    money.MustParse(amt),
			Status:    status,
		})
	}
	return e
}

func TestNetBalancesThreeWay(t *testing.T) {
	// 90.00 paid by alice, split evenly three ways.
	expenses := []models.Expense{
		expense("alice", "90.00", map[string]string{
			"alice": "30.00", "bob": "30.00", "carol": "30.00",
		}),
	}

	got := NetBalances(expenses)
	wants := map[string]string{"alice": "60.00", "bob": "-30.00", "carol": "-30.00"}
	for userID, want := range wants {
		if got[userID].String() != want {
			t.Errorf("balance[%s] = %s, want %s", userID, got[userID], want)
		}
	}
}

func TestNetBalancesIgnoresCancelledAndPayments(t *testing.T) {
	cancelled := expense("bob", "50.00", map[string]string{"alice": "50.00"})
	cancelled.Status = models.ExpenseCancelled

	active := expense("alice", "20.00", map[string]string{"alice": "10.00", "bob": "10.00"})
	// Mark bob's split paid; the agreement balance must not move.
	for i := range active.Splits {
		active.Splits[i].Status = models.SplitPaid
	}

	got := NetBalances([]models.Expense{cancelled, active})
	if got["alice"].String() != "10.00" {
		t.Errorf("alice = %s, want 10.00", got["alice"])
	}
	if got["bob"].String() != "-10.00" {
		t.Errorf("bob = %s, want -10.00", got["bob"])
	}
}

func TestNetBalancesEmpty(t *testing.T) {
	if got := NetBalances(nil); len(got) != 0 {
		t.Errorf("NetBalances(nil) = %v, want empty map", got)
	}
}

// Net balances are zero-sum for any set of valid expenses.
func TestNetBalancesZeroSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	users := []string{"u0", "u1", "u2", "u3", "u4"}

	for trial := 0; trial < 100; trial++ {
		var expenses []models.Expense
		for e := 0; e < 1+rng.Intn(6); e++ {
			n := 2 + rng.Intn(len(users)-1)
			shares := map[string]string{}
			totalCents := int64(0)
			for i := 0; i < n; i++ {
				c := int64(1 + rng.Intn(10000))
				shares[users[i]] = money.FromCents(c).String()
				totalCents += c
			}
			payer := users[rng.Intn(n)]
			expenses = append(expenses, expense(payer, money.FromCents(totalCents).String(), shares))
		}

		sum := money.Zero
		for _, net := range NetBalances(expenses) {
			sum = sum.Add(net)
		}
		if !sum.IsZero() {
			t.Fatalf("trial %d: balances sum to %s, want 0.00", trial, sum)
		}
	}
}

func TestOutstanding(t *testing.T) {
	e := expense("alice", "90.00", map[string]string{
		"alice": "30.00", "bob": "30.00", "carol": "30.00",
	})
	// bob paid 10.00 of his 30.00 so far.
	var bobSplit string
	for i := range e.Splits {
		if e.Splits[i].UserID == "bob" {
			e.Splits[i].Status = models.SplitPartiallyPaid
			bobSplit = e.Splits[i].ID
		}
	}
	paid := map[string]money.Money{bobSplit: money.MustParse("10.00")}

	debts := Outstanding([]models.Expense{e}, paid)
	if len(debts) != 2 {
		t.Fatalf("got %d debts, want 2: %v", len(debts), debts)
	}
	// Sorted by debtor: bob before carol.
	if debts[0].From != "bob" || debts[0].To != "alice" || debts[0].Amount.String() != "20.00" {
		t.Errorf("debts[0] = %+v, want bob->alice 20.00", debts[0])
	}
	if debts[1].From != "carol" || debts[1].To != "alice" || debts[1].Amount.String() != "30.00" {
		t.Errorf("debts[1] = %+v, want carol->alice 30.00", debts[1])
	}
}

func TestOutstandingExcludesPaidAndCancelled(t *testing.T) {
	settled := expense("alice", "10.00", map[string]string{"alice": "5.00", "bob": "5.00"})
	for i := range settled.Splits {
		settled.Splits[i].Status = models.SplitPaid
	}
	cancelled := expense("alice", "40.00", map[string]string{"bob": "40.00"})
	cancelled.Status = models.ExpenseCancelled

	debts := Outstanding([]models.Expense{settled, cancelled}, nil)
	if len(debts) != 0 {
		t.Errorf("got %v, want no outstanding debts", debts)
	}
}

func TestSimplifyDebts(t *testing.T) {
	balances := map[string]money.Money{
		"alice": money.MustParse("60.00"),
		"bob":   money.MustParse("-30.00"),
		"carol": money.MustParse("-30.00"),
	}
	edges := SimplifyDebts(balances)
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2: %v", len(edges), edges)
	}
	total := money.Zero
	for _, e := range edges {
		if e.To != "alice" {
			t.Errorf("edge %+v should pay alice", e)
		}
		total = total.Add(e.Amount)
	}
	if !total.Equal(money.MustParse("60.00")) {
		t.Errorf("edges transfer %s, want 60.00", total)
	}
}

func TestSimplifyDebtsChain(t *testing.T) {
	// a owes b, b owes c: simplification should not route through b.
	balances := map[string]money.Money{
		"a": money.MustParse("-10.00"),
		"b": money.Zero,
		"c": money.MustParse("10.00"),
	}
	edges := SimplifyDebts(balances)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1: %v", len(edges), edges)
	}
	if edges[0].From != "a" || edges[0].To != "c" || !edges[0].Amount.Equal(money.MustParse("10.00")) {
		t.Errorf("edge = %+v, want a->c 10.00", edges[0])
	}
}

func TestSimplifyDebtsSettlesEverything(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		// Build a random zero-sum balance map.
		n := 2 + rng.Intn(6)
		balances := map[string]money.Money{}
		running := money.Zero
		for i := 0; i < n-1; i++ {
			c := int64(rng.Intn(20001) - 10000)
			m := money.FromCents(c)
			balances[fmt.Sprintf("u%d", i)] = m
			running = running.Add(m)
		}
		balances[fmt.Sprintf("u%d", n-1)] = running.Neg()

		// Applying every edge must zero every balance.
		after := map[string]money.Money{}
		for k, v := range balances {
			after[k] = v
		}
		for _, e := range SimplifyDebts(balances) {
			after[e.From] = after[e.From].Add(e.Amount)
			after[e.To] = after[e.To].Sub(e.Amount)
		}
		for userID, net := range after {
			if !net.IsZero() {
				t.Fatalf("trial %d: %s left with %s after transfers", trial, userID, net)
			}
		}
	}
}
