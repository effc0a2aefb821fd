// Package models defines the core domain models for the gestion ledger engine.
//
// # Model Overview
//
//   - Plan: a shared-expense ("gestion") plan owned by one user
//   - Person: a plan member's ledger identity (may lack a user account)
//   - ContributionRecord: a pool contribution or a debt-clearing settlement
//   - PendingTransaction: a settlement payout awaiting manual reconciliation
//   - User: a registered account (authentication and account linking)
//
// # Design Principles
//
//  1. **Relationships by ID**: models reference each other through ID strings,
//     never pointers, to avoid circular references.
//  2. **Plan ownership**: Person records are owned by their Plan; they are
//     created when a member joins and removed when the member leaves.
//  3. **Derived data stays derived**: balances are computed from persons and
//     records on every read and are never persisted.
package models
