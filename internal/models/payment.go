package models

import (
	"time"

	"github.com/tallyup/tallyup/internal/money"
)

// Payment records money applied against a split during settle-up. Payments
// are append-only: once inserted they are never updated or deleted except
// as part of whole-group teardown. Several payments may apply against one
// split (partial settlement).
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// SplitID is the split this payment applies to.
	SplitID string

	// Amount paid; always positive.
	Amount money.Money

	// PaidAt is when the payment was made.
	PaidAt time.Time
}
