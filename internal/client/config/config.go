// Package config holds the settings of the truthctl command line client.
//
// Values are layered: LoadDefaults, then an optional JSON file (LoadJSON),
// then environment variables and flags, which the cli package applies last.
package config

import "time"

// Config holds runtime settings for truthctl.
//
// Fields:
//   - ServerURL: base URL of the TruthChain HTTP API.
//   - GRPCAddr: host:port of the gRPC API; when set, list and status use it.
//   - RPCURL / ChainID: EVM endpoint used to sign and send storeRecord.
//   - KeyFile: file holding the hex private key; empty prompts on the terminal.
//   - RequestTimeout bounds each API call, LedgerTimeout the wait for mining.
//   - JournalPath: SQLite file keeping mined submissions until the server
//     has stored them.
type Config struct {
	ServerURL      string
	GRPCAddr       string
	RPCURL         string
	ChainID        int64
	KeyFile        string
	RequestTimeout time.Duration
	LedgerTimeout  time.Duration
	JournalPath    string
}

// LoadDefaults populates c with defaults for a local server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.RPCURL = "https://polygon-rpc.com/"
	c.ChainID = 137
	c.RequestTimeout = 2 * time.Minute
	c.LedgerTimeout = 2 * time.Minute
	c.JournalPath = "truthctl.db"
}
