// Package models defines the core domain entities of the ledger.
//
// # Models
//
//   - Expense: money one member paid on behalf of the group
//   - Split: one debtor's portion of a single expense
//   - Payment: money recorded against a split during settle-up
//   - Group: the owning group and its member user ids
//   - Balance: a member's derived net position (never persisted)
//
// # Design Principles
//
//  1. **Id-only relations**: entities hold the ids of their relations, never
//     pointers, so there are no object cycles to keep consistent.
//  2. **Derived status**: split and expense statuses are produced only by the
//     calculator package; nothing else writes them. Cancellation is the one
//     externally applied status and it is terminal.
//  3. **Exact money**: every amount is a money.Money; floats never appear.
package models
