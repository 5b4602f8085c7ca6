package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept "30s" style strings or integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	GRPCAddr       string         `json:"grpc_addr"`
	RPCURL         string         `json:"rpc_url"`
	ChainID        int64          `json:"chain_id"`
	KeyFile        string         `json:"key_file"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LedgerTimeout  timex.Duration `json:"ledger_timeout"`
	JournalPath    string         `json:"journal"`
}

// LoadJSON overlays cfg with the non-empty values of the JSON file at path.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.GRPCAddr != "" {
		cfg.GRPCAddr = jc.GRPCAddr
	}
	if jc.RPCURL != "" {
		cfg.RPCURL = jc.RPCURL
	}
	if jc.ChainID != 0 {
		cfg.ChainID = jc.ChainID
	}
	if jc.KeyFile != "" {
		cfg.KeyFile = jc.KeyFile
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.LedgerTimeout.Duration != 0 {
		cfg.LedgerTimeout = time.Duration(jc.LedgerTimeout.Duration)
	}
	if jc.JournalPath != "" {
		cfg.JournalPath = jc.JournalPath
	}
	return nil
}
