// Package cli implements truthctl, the TruthChain command line client.
//
// Commands:
//   - fingerprint: compute a fingerprint locally
//   - list: print the verified records, newest first
//   - status: print the server configuration summary
//   - submit: pin a file with a statement, sign storeRecord with the
//     user's key and finalize the record on the server
//   - pending: print mined submissions the server has not stored yet
//   - retry: finalize the pending submissions again
//
// The server only accepts a record after it has found the matching
// RecordStored event on the ledger, so submit waits for the transaction to
// be mined before it calls save-record. A mined submission is written to a
// local SQLite journal first and removed once the server has stored it, so a
// failed save-record can be retried without sending another transaction.
package cli
