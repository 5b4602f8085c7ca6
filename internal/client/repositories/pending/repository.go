// Package pending stores mined submissions that still have to be finalized
// on the server.
package pending

import (
	"context"

	"github.com/dmitrijs2005/truthchain/internal/client/models"
)

type Repository interface {
	// Save inserts p or replaces the entry with the same fingerprint.
	Save(ctx context.Context, p *models.Pending) error
	// Get returns (nil, nil) when no entry has the fingerprint.
	Get(ctx context.Context, hash string) (*models.Pending, error)
	// List returns all entries, oldest first.
	List(ctx context.Context) ([]*models.Pending, error)
	Delete(ctx context.Context, hash string) error
}
