// Package ledger is the system of record for a scoring session: the
// registered roster, running totals and the append-only round history.
//
// # Invariants
//
// For every name, Totals[name] equals Carried[name] plus the sum of
// Delta[name] over History. Carried holds deltas of rounds dropped by the
// retention cap, so trimming never changes a total.
//
// ApplyRound parses, validates and scores every token before it touches any
// state. UndoLast subtracts the stored delta of the popped round rather
// than rescoring it, so undo stays exact after the rules change.
//
// A Ledger is not safe for concurrent use; the session owns it.
package ledger
