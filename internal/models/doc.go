// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Participant: a person sharing expenses, identified by name
//   - ParticipantSet: the ordered, configuration-time set of participants
//   - Expense: an admitted expense with its per-participant split
//
// Balances are never stored. They are derived by replaying every admitted
// expense (see the calculator package).
//
// # Amounts
//
// All amounts are decimal.Decimal values at currency scale (two fractional
// digits). Sums are compared with Epsilon rather than exact equality so that
// splits entered by hand tolerate rounding.
//
// # Identity
//
// Expenses carry sequential integer IDs assigned at admission. IDs are never
// reused within a ledger, even after removal.
package models
