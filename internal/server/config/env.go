package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/flagx"
	"github.com/joho/godotenv"
)

// contractConfigFile is written by the deployment tooling next to the server.
const contractConfigFile = "contract-config.json"

// parseEnv overlays Config with environment variables. A dotenv file given
// with -env is loaded first and must exist; otherwise ./.env is loaded when
// present. Variables already set in the process environment win over the file.
//
// Recognised variables:
//
//	TRUTHCHAIN_HTTP_ADDR, TRUTHCHAIN_GRPC_ADDR, DATABASE_URL, TRUTHCHAIN_SECRET_KEY,
//	TRUTHCHAIN_LOG_LEVEL, TRUTHCHAIN_MODE, BLOCKCHAIN_MOCK_MODE, POLYGON_RPC_URL,
//	CONTRACT_ADDRESS, CHAIN_ID, POLYGON_PRIVATE_KEY, TRUTHCHAIN_CONTENT_STORE,
//	PINATA_JWT, WEB3_STORAGE_TOKEN, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET,
//	S3_REGION, S3_ENDPOINT, TRUTHCHAIN_UPLOADS_DIR, TRUTHCHAIN_LEDGER_TIMEOUT
//
// When CONTRACT_ADDRESS is not set, the address is read from
// contract-config.json in the working directory.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, "TRUTHCHAIN_HTTP_ADDR")
	setString(&config.EndpointAddrGRPC, "TRUTHCHAIN_GRPC_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SecretKey, "TRUTHCHAIN_SECRET_KEY")
	setString(&config.LogLevel, "TRUTHCHAIN_LOG_LEVEL")

	if v, ok := os.LookupEnv("TRUTHCHAIN_MODE"); ok && v != "" {
		config.VerificationMode = common.VerificationMode(v)
	}
	if v, _ := strconv.ParseBool(os.Getenv("BLOCKCHAIN_MOCK_MODE")); v {
		config.VerificationMode = common.ModeOfflineTest
	}

	setString(&config.LedgerRPCURL, "POLYGON_RPC_URL")
	setString(&config.ContractAddress, "CONTRACT_ADDRESS")
	if v, err := strconv.ParseInt(os.Getenv("CHAIN_ID"), 10, 64); err == nil {
		config.ChainID = v
	}
	setString(&config.LedgerSignerKey, "POLYGON_PRIVATE_KEY")
	if v, err := time.ParseDuration(os.Getenv("TRUTHCHAIN_LEDGER_TIMEOUT")); err == nil {
		config.LedgerTimeout = v
	}

	setString(&config.ContentStore, "TRUTHCHAIN_CONTENT_STORE")
	setString(&config.PinataJWT, "PINATA_JWT")
	setString(&config.Web3StorageToken, "WEB3_STORAGE_TOKEN")
	setString(&config.S3RootUser, "S3_ACCESS_KEY")
	setString(&config.S3RootPassword, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	setString(&config.UploadsDir, "TRUTHCHAIN_UPLOADS_DIR")

	if config.ContractAddress == "" {
		config.ContractAddress = readContractConfig(contractConfigFile)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = strings.TrimSpace(v)
	}
}

// readContractConfig returns the "address" field of the deployment file, or
// "" when the file is missing or unreadable.
func readContractConfig(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var c struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return ""
	}
	return c.Address
}
