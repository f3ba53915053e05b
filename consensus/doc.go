// Package consensus holds the collaborators that decide what goes into the
// ledger without being part of its integrity checks: signature schemes for
// transactions, a bounded proof-of-work search, stake-weighted leader
// selection, and a Producer that ties them together.
//
// # Core Components
//
// Scheme: Signs and verifies opaque payloads. Ed25519Scheme uses the standard
// library, SchnorrScheme uses kyber over the Ed25519 group.
//
// Mine: Searches for a nonce whose digest, taken together with the previous
// block hash, starts with the requested number of hex zeros. The search is
// bounded by an attempt budget, a timeout and the caller's context.
//
// SelectValidator: Picks a validator with probability proportional to its
// stake, drawing randomness from a kyber cipher stream.
//
// Producer: Elects a leader, mines over the ledger tail and appends the
// batch. It sees the ledger only through the Ledger interface.
//
// # Trust Boundary
//
// The ledger never re-checks signatures or work. A Receipt carries the
// evidence for callers that want it; VerifyReceipt checks it.
package consensus
