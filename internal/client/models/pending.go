// Package models defines the client-side data kept by truthctl.
package models

import (
	"time"

	"github.com/dmitrijs2005/truthchain/internal/server/models"
)

// Pending is a submission whose storeRecord transaction has been mined but
// which the server has not stored yet.
type Pending struct {
	models.Submission

	// ServerURL is the API the submission was prepared against.
	ServerURL string

	// Attempts counts failed save-record calls.
	Attempts int

	// LastError is the message of the last failed attempt.
	LastError string

	CreatedAt time.Time
}
