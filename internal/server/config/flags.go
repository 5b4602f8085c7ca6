package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      HTTP bind address (e.g. ":5000")
//	-grpc string   gRPC bind address (e.g. ":50051")
//	-d string      PostgreSQL DSN ("" selects the in-memory repository)
//	-s string      intake ticket HMAC secret
//	-t int         intake ticket validity, minutes
//	-l string      log level
//	-m string      verification mode: live | offline-test
//	-r string      ledger JSON-RPC URL
//	-k string      TruthChain contract address
//	-i int         chain id
//	-store string  content store: auto | pinata | web3storage | s3 | local
//	-u string      S3 access key
//	-p string      S3 secret key
//	-b string      S3 bucket name
//	-e string      S3 base endpoint
//	-uploads string  local content store directory
//
// Only the flags listed above are taken from os.Args (see flagx.FilterArgs).
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-grpc", "-d", "-s", "-t", "-l", "-m", "-r", "-k", "-i",
		"-store", "-u", "-p", "-b", "-e", "-uploads",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	ticketValidity := fs.Int("t", int(config.TicketValidityDuration.Minutes()), "intake ticket validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	mode := fs.String("m", string(config.VerificationMode), "verification mode (live, offline-test)")
	fs.StringVar(&config.LedgerRPCURL, "r", config.LedgerRPCURL, "ledger JSON-RPC URL")
	fs.StringVar(&config.ContractAddress, "k", config.ContractAddress, "contract address")
	fs.Int64Var(&config.ChainID, "i", config.ChainID, "chain id")

	fs.StringVar(&config.ContentStore, "store", config.ContentStore, "content store backend")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.UploadsDir, "uploads", config.UploadsDir, "local uploads directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TicketValidityDuration = time.Duration(*ticketValidity) * time.Minute
	config.VerificationMode = common.VerificationMode(*mode)
}
