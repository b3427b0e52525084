// Package data persists the evidence fragments attached to notes.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/dbx"
	"github.com/dmitrijs2005/osmnotes/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectData = `SELECT id, note_id, source_type, encrypted_content, created_at, updated_at FROM data`

func scanData(s interface{ Scan(dest ...any) error }) (map[string]any, error) {
	var (
		id, noteID, sourceType string
		content                []byte
		createdAt, updatedAt   time.Time
	)
	if err := s.Scan(&id, &noteID, &sourceType, &content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":                id,
		"note_id":           noteID,
		"source_type":       sourceType,
		"encrypted_content": content,
		"created_at":        createdAt,
		"updated_at":        updatedAt,
	}, nil
}

// Create inserts fragment. A fragment for a missing note yields
// common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, fragment models.DataRecord) error {
	query :=
		`INSERT INTO data (id, note_id, source_type, encrypted_content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		fragment.ID, fragment.NoteID, fragment.SourceType, fragment.EncryptedContent, fragment.CreatedAt, fragment.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return common.ErrorAlreadyExists
		case dbx.IsForeignKeyViolation(err):
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id models.DataID) (map[string]any, error) {
	row, err := scanData(r.db.QueryRowContext(ctx, selectData+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return row, nil
}

// ListByNote returns every fragment of the note, oldest first.
func (r *PostgresRepository) ListByNote(ctx context.Context, noteID models.NoteID) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, selectData+` WHERE note_id = $1 ORDER BY created_at, id`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to select data: %w", err)
	}
	defer rows.Close()

	var result []map[string]any
	for rows.Next() {
		row, err := scanData(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ConditionalUpdate(ctx context.Context, fragment models.DataRecord, expected time.Time) error {
	query := `
		UPDATE data
		SET encrypted_content = $3, updated_at = $4
		WHERE id = $1 AND note_id = $2 AND updated_at = $5
	`
	res, err := r.db.ExecContext(ctx, query,
		fragment.ID, fragment.NoteID, fragment.EncryptedContent, fragment.UpdatedAt, expected)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
