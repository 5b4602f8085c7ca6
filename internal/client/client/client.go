package client

import (
	"context"

	"github.com/dmitrijs2005/truthchain/internal/server/models"
)

// Reader is the read side of the API.
type Reader interface {
	ListRecords(ctx context.Context) ([]*models.Record, error)
	Status(ctx context.Context) (*ServerStatus, error)
	Close() error
}

// ServerStatus mirrors GET /api/status.
type ServerStatus struct {
	StorageMode        string `json:"storageMode"`
	VerificationMode   string `json:"verificationMode"`
	ContractAddress    string `json:"contractAddress,omitempty"`
	HasContractAddress bool   `json:"hasContractAddress"`
	HasPinataJwt       bool   `json:"hasPinataJwt"`
	HasWeb3Token       bool   `json:"hasWeb3Token"`
	HasS3Credentials   bool   `json:"hasS3Credentials"`
	HasPolygonKey      bool   `json:"hasPolygonKey"`
	RelayEnabled       bool   `json:"relayEnabled"`
	TicketRequired     bool   `json:"ticketRequired"`
}
