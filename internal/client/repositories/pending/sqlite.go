package pending

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/truthchain/internal/client/models"
	"github.com/dmitrijs2005/truthchain/internal/dbx"
)

const columns = `hash, text, cid, tx, file_name, file_type, timestamp, wallet_address,
	ticket, server_url, attempts, last_error, created_at`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, p *models.Pending) error {
	query := `INSERT INTO pending (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			tx = excluded.tx,
			wallet_address = excluded.wallet_address,
			ticket = excluded.ticket,
			attempts = excluded.attempts,
			last_error = excluded.last_error`

	_, err := r.db.ExecContext(ctx, query,
		p.Fingerprint, p.Text, p.ContentID, p.LedgerTxRef, p.FileName, p.FileType, p.Timestamp,
		p.WalletAddress, p.Ticket, p.ServerURL, p.Attempts, p.LastError, p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save pending %s: %w", p.Fingerprint, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, hash string) (*models.Pending, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM pending WHERE hash = ?`, hash)

	p, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending %s: %w", hash, err)
	}
	return p, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Pending, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM pending ORDER BY created_at, hash`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending: %w", err)
	}
	defer rows.Close()

	var result []*models.Pending
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, hash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("failed to delete pending %s: %w", hash, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Pending, error) {
	var p models.Pending
	err := s.Scan(&p.Fingerprint, &p.Text, &p.ContentID, &p.LedgerTxRef, &p.FileName, &p.FileType,
		&p.Timestamp, &p.WalletAddress, &p.Ticket, &p.ServerURL, &p.Attempts, &p.LastError, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
