package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/dbx"
	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts r and fills in the server-assigned columns.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.Record) (*models.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO records (id, text, cid, fingerprint, tx, file_name, file_type, timestamp, submitter, verification_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.Text, rec.ContentID, rec.Fingerprint, rec.LedgerTxRef,
		rec.FileName, rec.FileType, rec.Timestamp, rec.Submitter, string(rec.VerificationMode),
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: fingerprint %s", common.ErrDuplicateRecord, rec.Fingerprint)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

// ListAll returns all records newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Record, error) {
	query := `SELECT id, text, cid, fingerprint, tx, file_name, file_type, timestamp, submitter, verification_mode, created_at
		FROM records
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Record, 0)
	for rows.Next() {
		var item models.Record
		var mode string
		if err := rows.Scan(
			&item.ID, &item.Text, &item.ContentID, &item.Fingerprint, &item.LedgerTxRef,
			&item.FileName, &item.FileType, &item.Timestamp, &item.Submitter, &mode, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.VerificationMode = common.VerificationMode(mode)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
