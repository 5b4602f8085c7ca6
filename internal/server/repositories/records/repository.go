// Package records stores verified submissions. Records are append-only:
// there is no update or delete.
package records

import (
	"context"

	"github.com/dmitrijs2005/truthchain/internal/server/models"
)

// Repository persists records.
//
// Create assigns ID and CreatedAt when they are empty and returns the stored
// record. A second record with the same fingerprint fails with
// common.ErrDuplicateRecord and leaves the first one untouched.
//
// ListAll returns every record, newest first by CreatedAt with ties broken by
// descending ID.
type Repository interface {
	Create(ctx context.Context, r *models.Record) (*models.Record, error)
	ListAll(ctx context.Context) ([]*models.Record, error)
}
