package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_create_users.sql", "00002_create_notes.sql", "00003_create_data.sql"}, names)

	for _, name := range names {
		b, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(b), "-- +goose Up"), name)
		assert.True(t, strings.Contains(string(b), "-- +goose Down"), name)
	}
}

func TestMigrations_EnumChecksMatchDomain(t *testing.T) {
	notes, err := fs.ReadFile(Migrations, "00002_create_notes.sql")
	require.NoError(t, err)
	for _, s := range models.NoteStatuses {
		assert.Contains(t, string(notes), "'"+string(s)+"'")
	}

	data, err := fs.ReadFile(Migrations, "00003_create_data.sql")
	require.NoError(t, err)
	for _, s := range models.DataSourceTypes {
		assert.Contains(t, string(data), "'"+string(s)+"'")
	}
}
