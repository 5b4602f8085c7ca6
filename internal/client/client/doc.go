// Package client talks to a TruthChain server.
//
// HTTPClient covers the whole protocol: intake (PrepareUpload), finalize
// (SaveRecord), listing, status and the contract address. GRPCClient covers
// the read side. Both satisfy Reader.
//
// Server errors are returned as *APIError, which unwraps to the sentinel of
// its kind in package common, so callers can match them with errors.Is.
package client
