// Package session is the operator façade over a ledger.
//
// A Session loads its ledger from a BlobStore when it opens and saves a
// snapshot after every successful mutation. A mutation whose snapshot cannot
// be saved is rolled back, so the in-memory ledger never runs ahead of the
// store.
//
// Stored data that fails to decode or restore is never fatal: the session
// falls back to the store's previous snapshot when one exists, otherwise to
// a fresh ledger built from config, and reports the problem through Notice.
package session
