package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/flagx"
	"github.com/dmitrijs2005/truthchain/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted. Absent
// fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP       string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC       string         `json:"endpoint_addr_grpc"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	TicketValidityDuration timex.Duration `json:"ticket_validity_duration"`
	RequireTicket          *bool          `json:"require_ticket"`
	LogLevel               string         `json:"log_level"`

	VerificationMode string         `json:"verification_mode"`
	LedgerRPCURL     string         `json:"ledger_rpc_url"`
	ContractAddress  string         `json:"contract_address"`
	ChainID          int64          `json:"chain_id"`
	LedgerSignerKey  string         `json:"ledger_signer_key"`
	LedgerTimeout    timex.Duration `json:"ledger_timeout"`

	ContentStore        string `json:"content_store"`
	PinataJWT           string `json:"pinata_jwt"`
	PinataEndpoint      string `json:"pinata_endpoint"`
	Web3StorageToken    string `json:"web3_storage_token"`
	Web3StorageEndpoint string `json:"web3_storage_endpoint"`
	S3RootUser          string `json:"s3_root_user"`
	S3RootPassword      string `json:"s3_root_password"`
	S3Bucket            string `json:"s3_bucket"`
	S3Region            string `json:"s3_region"`
	S3BaseEndpoint      string `json:"s3_base_endpoint"`
	UploadsDir          string `json:"uploads_dir"`

	MaxUploadBytes   int64          `json:"max_upload_bytes"`
	AllowedFileTypes []string       `json:"allowed_file_types"`
	ListingCacheTTL  timex.Duration `json:"listing_cache_ttl"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config (if any) into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	str(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	str(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	str(&config.DatabaseDSN, c.DatabaseDSN)
	str(&config.SecretKey, c.SecretKey)
	if c.TicketValidityDuration.Duration > 0 {
		config.TicketValidityDuration = c.TicketValidityDuration.Duration
	}
	if c.RequireTicket != nil {
		config.RequireTicket = *c.RequireTicket
	}
	str(&config.LogLevel, c.LogLevel)

	if c.VerificationMode != "" {
		config.VerificationMode = common.VerificationMode(c.VerificationMode)
	}
	str(&config.LedgerRPCURL, c.LedgerRPCURL)
	str(&config.ContractAddress, c.ContractAddress)
	if c.ChainID != 0 {
		config.ChainID = c.ChainID
	}
	str(&config.LedgerSignerKey, c.LedgerSignerKey)
	if c.LedgerTimeout.Duration > 0 {
		config.LedgerTimeout = c.LedgerTimeout.Duration
	}

	str(&config.ContentStore, c.ContentStore)
	str(&config.PinataJWT, c.PinataJWT)
	str(&config.PinataEndpoint, c.PinataEndpoint)
	str(&config.Web3StorageToken, c.Web3StorageToken)
	str(&config.Web3StorageEndpoint, c.Web3StorageEndpoint)
	str(&config.S3RootUser, c.S3RootUser)
	str(&config.S3RootPassword, c.S3RootPassword)
	str(&config.S3Bucket, c.S3Bucket)
	str(&config.S3Region, c.S3Region)
	str(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	str(&config.UploadsDir, c.UploadsDir)

	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if len(c.AllowedFileTypes) > 0 {
		config.AllowedFileTypes = c.AllowedFileTypes
	}
	if c.ListingCacheTTL.Duration > 0 {
		config.ListingCacheTTL = c.ListingCacheTTL.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}
