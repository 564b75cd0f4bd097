// Package caravan is a personal trade ledger for caravan merchants.
//
// It records three kinds of activity, each in its own append-only
// collection:
//   - Trades: packs delivered from one node to another, and their profit.
//   - Expenses: in-game money spent, derived from the balance left after a purchase.
//   - Coin sales: in-game money sold for real dollars.
//
// On top of the ledger, stateless functions derive statistics: the wallet
// balance, route rankings, the price history of a route and an estimate of
// the money earned per hour. A Shift restricts all of them to the records
// created since the shift started.
//
// In-game amounts are always Copper, an exact integer count of the minor
// unit, so that balance computations never drift.
//
// This package serves as the foundational logic for the `cvn` command-line
// tool and its HTTP server.
package caravan
