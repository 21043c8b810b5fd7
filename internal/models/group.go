package models

import (
	"time"

	"github.com/tallyup/tallyup/internal/money"
)

// Group owns expenses and carries the member list the ledger gates on.
// Membership workflow (invites, join requests) lives outside the ledger;
// only the current member ids matter here.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// CreatedBy is the user id of the group's creator. Creators may not
	// leave a group; they must delete it.
	CreatedBy string

	// Members is the list of member user ids.
	Members []string

	// CreatedAt is when the group was created.
	CreatedAt time.Time
}

// HasMember reports whether userID is currently in the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Balance is a member's derived net position within a group. It is computed
// on demand and never persisted. Positive means the group owes the member;
// negative means the member owes the group.
type Balance struct {
	UserID string
	Net    money.Money
}
