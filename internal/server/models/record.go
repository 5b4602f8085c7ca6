package models

import (
	"time"

	"github.com/dmitrijs2005/truthchain/internal/common"
)

// Record is a verified submission as mirrored in the database. Records are
// append-only.
type Record struct {
	ID               string                  `json:"id"`
	Text             string                  `json:"text"`
	ContentID        string                  `json:"cid"`
	Fingerprint      string                  `json:"hash"`
	LedgerTxRef      string                  `json:"tx"`
	FileName         string                  `json:"fileName"`
	FileType         string                  `json:"fileType"`
	Timestamp        string                  `json:"timestamp"`
	Submitter        string                  `json:"walletAddress,omitempty"`
	VerificationMode common.VerificationMode `json:"verificationMode"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// PreparedUpload is returned by intake and carries everything the client
// needs to attest the fingerprint and call finalize.
type PreparedUpload struct {
	ContentID        string                  `json:"cid"`
	Fingerprint      string                  `json:"hash"`
	Timestamp        string                  `json:"timestamp"`
	FileName         string                  `json:"fileName"`
	FileType         string                  `json:"fileType"`
	Ticket           string                  `json:"ticket,omitempty"`
	ContractAddress  string                  `json:"contractAddress,omitempty"`
	VerificationMode common.VerificationMode `json:"verificationMode"`
}

// Submission is the finalize input: the intake output plus the ledger
// transaction reference and the submitter's wallet address.
type Submission struct {
	Text          string `json:"text"`
	ContentID     string `json:"cid"`
	Fingerprint   string `json:"hash"`
	LedgerTxRef   string `json:"tx"`
	FileName      string `json:"fileName"`
	FileType      string `json:"fileType"`
	Timestamp     string `json:"timestamp"`
	WalletAddress string `json:"walletAddress"`
	Ticket        string `json:"ticket"`
}
