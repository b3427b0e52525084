package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

var (
	insertUser = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*osm_id,\s*password,\s*encrypted_openai_key,\s*created_at,\s*last_login_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`
	userCols   = []string{"id", "osm_id", "password", "encrypted_openai_key", "created_at", "last_login_at"}
	created    = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

func sampleUser() models.UserRecord {
	return models.UserRecord{
		ID:                 "user:1",
		OsmID:              "4242",
		Password:           "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		EncryptedOpenAIKey: []byte{9, 9},
		CreatedAt:          created,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	u := sampleUser()
	mock.ExpectExec(insertUser).
		WithArgs(u.ID, u.OsmID, u.Password, u.EncryptedOpenAIKey, u.CreatedAt, u.LastLoginAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateOsmID(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(insertUser).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_osm_id_key"})

	err := repo.Create(context.Background(), sampleUser())
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(insertUser).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), sampleUser())
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByOsmID_Found(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	login := created.Add(time.Hour)
	mock.ExpectQuery(`(?s)^SELECT .* FROM users WHERE osm_id = \$1$`).
		WithArgs("4242").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user:1", "4242", "hash", []byte{1}, created, login))

	row, err := repo.GetByOsmID(context.Background(), "4242")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":                   "user:1",
		"osm_id":               "4242",
		"password":             "hash",
		"encrypted_openai_key": []byte{1},
		"created_at":           created,
		"last_login_at":        login,
	}, row)
}

func TestGet_NullColumnsAreExplicitNil(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT .* FROM users WHERE id = \$1$`).
		WithArgs(models.UserID("user:1")).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user:1", "4242", "hash", nil, created, nil))

	row, err := repo.Get(context.Background(), "user:1")
	require.NoError(t, err)

	key, ok := row["encrypted_openai_key"]
	assert.True(t, ok, "null key must be present")
	assert.Nil(t, key)
	login, ok := row["last_login_at"]
	assert.True(t, ok)
	assert.Nil(t, login)
}

func TestGetByOsmID_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE osm_id`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByOsmID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByOsmID_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE osm_id`).WillReturnError(errors.New("db err"))

	_, err := repo.GetByOsmID(context.Background(), "4242")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db err")
}

func TestTouchLastLogin(t *testing.T) {
	q := `^UPDATE users SET last_login_at = \$2 WHERE id = \$1$`
	at := created.Add(time.Minute)

	t.Run("updated", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs(models.UserID("user:1"), at).WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.TouchLastLogin(context.Background(), "user:1", at))
	})

	t.Run("missing user", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.TouchLastLogin(context.Background(), "user:1", at), common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(errors.New("boom"))
		err := repo.TouchLastLogin(context.Background(), "user:1", at)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db error")
	})
}
