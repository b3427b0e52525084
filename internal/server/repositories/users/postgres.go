// Package users persists user records in PostgreSQL.
package users

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

const selectUser = `SELECT id, osm_id, password, encrypted_openai_key, created_at, last_login_at FROM users`

// Create inserts user. A second user with the same osm_id yields
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user models.UserRecord) error {
	query :=
		`INSERT INTO users (id, osm_id, password, encrypted_openai_key, created_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.OsmID, user.Password, user.EncryptedOpenAIKey, user.CreatedAt, user.LastLoginAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id models.UserID) (map[string]any, error) {
	return r.one(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByOsmID(ctx context.Context, osmID string) (map[string]any, error) {
	return r.one(ctx, selectUser+` WHERE osm_id = $1`, osmID)
}

// TouchLastLogin records a successful signin.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id models.UserID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, arg any) (map[string]any, error) {
	var (
		id, osmID, password string
		key                 []byte
		createdAt           time.Time
		lastLogin           sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(&id, &osmID, &password, &key, &createdAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	row := map[string]any{
		"id":                   id,
		"osm_id":               osmID,
		"password":             password,
		"encrypted_openai_key": nil,
		"created_at":           createdAt,
		"last_login_at":        nil,
	}
	if key != nil {
		row["encrypted_openai_key"] = key
	}
	if lastLogin.Valid {
		row["last_login_at"] = lastLogin.Time
	}
	return row, nil
}
