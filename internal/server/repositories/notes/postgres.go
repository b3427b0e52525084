// Package notes persists note records in PostgreSQL.
package notes

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

const selectNote = `SELECT id, user_id, status, encrypted_content, created_at, updated_at FROM notes`

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (map[string]any, error) {
	var (
		id, userID, status   string
		content              []byte
		createdAt, updatedAt time.Time
	)
	if err := s.Scan(&id, &userID, &status, &content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":                id,
		"user_id":           userID,
		"status":            status,
		"encrypted_content": content,
		"created_at":        createdAt,
		"updated_at":        updatedAt,
	}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, note models.NoteRecord) error {
	query :=
		`INSERT INTO notes (id, user_id, status, encrypted_content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		note.ID, note.UserID, note.Status, note.EncryptedContent, note.CreatedAt, note.UpdatedAt)
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

func (r *PostgresRepository) Get(ctx context.Context, id models.NoteID) (map[string]any, error) {
	return r.get(ctx, selectNote+` WHERE id = $1`, id)
}

// GetForShare must run inside a transaction for the lock to outlive the
// statement.
func (r *PostgresRepository) GetForShare(ctx context.Context, id models.NoteID) (map[string]any, error) {
	return r.get(ctx, selectNote+` WHERE id = $1 FOR SHARE`, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, id models.NoteID) (map[string]any, error) {
	row, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return row, nil
}

// ListByUser returns the user's notes, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID models.UserID) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, selectNote+` WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []map[string]any
	for rows.Next() {
		row, err := scanNote(rows)
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

func (r *PostgresRepository) ConditionalUpdate(ctx context.Context, note models.NoteRecord, expected time.Time) error {
	query := `
		UPDATE notes
		SET status = $3, encrypted_content = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2 AND updated_at = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		note.ID, note.UserID, note.Status, note.EncryptedContent, note.UpdatedAt, expected)
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
