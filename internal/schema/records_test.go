package schema

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUserRaw() map[string]any {
	return map[string]any{
		"id":                   "user:123",
		"osm_id":               "12345",
		"password":             "hashed_password",
		"encrypted_openai_key": []byte{1, 2, 3},
		"created_at":           time.Now(),
		"last_login_at":        time.Now(),
	}
}

func validNoteRaw() map[string]any {
	return map[string]any{
		"id":                "note:456",
		"user_id":           "user:123",
		"status":            "draft",
		"encrypted_content": []byte{10, 20, 30},
		"created_at":        time.Now(),
		"updated_at":        time.Now(),
	}
}

func validDataRaw() map[string]any {
	return map[string]any{
		"id":                "data:789",
		"note_id":           "note:456",
		"source_type":       "text",
		"encrypted_content": []byte{40, 50, 60},
		"created_at":        time.Now(),
		"updated_at":        time.Now(),
	}
}

func with(base map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	out[key] = value
	return out
}

func without(base map[string]any, key string) map[string]any {
	out := with(base, key, nil)
	delete(out, key)
	return out
}

func TestUserRecord(t *testing.T) {
	base := validUserRaw()
	tests := []struct {
		name    string
		raw     map[string]any
		wantErr bool
		path    string
		c       Constraint
	}{
		{"valid", base, false, "", ""},
		{"null openai key", with(base, "encrypted_openai_key", nil), false, "", ""},
		{"null last login", with(base, "last_login_at", nil), false, "", ""},
		{"RFC 3339 strings", with(with(base, "created_at", "2024-01-02T03:04:05Z"), "last_login_at", "2024-01-02T03:04:05.123Z"), false, "", ""},
		{"empty osm_id", with(base, "osm_id", ""), true, "osm_id", ConstraintNonEmpty},
		{"null osm_id", with(base, "osm_id", nil), true, "osm_id", ConstraintNotNull},
		{"empty password", with(base, "password", ""), true, "password", ConstraintNonEmpty},
		{"missing last login", without(base, "last_login_at"), true, "last_login_at", ConstraintRequired},
		{"null created_at", with(base, "created_at", nil), true, "created_at", ConstraintNotNull},
		{"bad created_at", with(base, "created_at", "not a date"), true, "created_at", ConstraintInstant},
		{"empty openai key", with(base, "encrypted_openai_key", []byte{}), true, "encrypted_openai_key", ConstraintNonEmpty},
		{"string openai key", with(base, "encrypted_openai_key", "sk-..."), true, "encrypted_openai_key", ConstraintType},
		{"numeric id", with(base, "id", 5.0), true, "id", ConstraintType},
		{"empty id", with(base, "id", ""), true, "id", ConstraintNonEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserRecord(tt.raw)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			requireViolation(t, err, tt.path, tt.c)
		})
	}
}

func TestUserRecord_NullsMapToNil(t *testing.T) {
	raw := with(with(validUserRaw(), "last_login_at", nil), "encrypted_openai_key", nil)
	u, err := ParseUserRecord(raw)
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)
	assert.Nil(t, u.EncryptedOpenAIKey)
	assert.Equal(t, models.UserID("user:123"), u.ID)
}

func TestNoteRecord(t *testing.T) {
	for _, s := range models.NoteStatuses {
		t.Run("status "+string(s), func(t *testing.T) {
			n, err := ParseNoteRecord(with(validNoteRaw(), "status", string(s)))
			require.NoError(t, err)
			assert.Equal(t, s, n.Status)
		})
	}

	base := validNoteRaw()
	tests := []struct {
		name string
		raw  map[string]any
		path string
		c    Constraint
	}{
		{"invalid status", with(base, "status", "invalid_status"), "status", ConstraintEnum},
		{"numeric status", with(base, "status", 1), "status", ConstraintType},
		{"empty content", with(base, "encrypted_content", []byte{}), "encrypted_content", ConstraintNonEmpty},
		{"missing content", without(base, "encrypted_content"), "encrypted_content", ConstraintRequired},
		{"string content", with(base, "encrypted_content", "abc"), "encrypted_content", ConstraintType},
		{"missing updated_at", without(base, "updated_at"), "updated_at", ConstraintRequired},
		{"empty id", with(base, "id", ""), "id", ConstraintNonEmpty},
		{"empty user_id", with(base, "user_id", ""), "user_id", ConstraintNonEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNoteRecord(tt.raw)
			requireViolation(t, err, tt.path, tt.c)
		})
	}
}

func TestNoteRecord_ContentAsNumberArray(t *testing.T) {
	n, err := ParseNoteRecord(with(validNoteRaw(), "encrypted_content", []any{10.0, 20.0, 255.0}))
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 255}, n.EncryptedContent)

	_, err = ParseNoteRecord(with(validNoteRaw(), "encrypted_content", []any{10.0, 256.0}))
	requireViolation(t, err, "encrypted_content[1]", ConstraintByte)

	_, err = ParseNoteRecord(with(validNoteRaw(), "encrypted_content", []any{"a"}))
	requireViolation(t, err, "encrypted_content[0]", ConstraintType)
}

func TestNoteRecord_DoesNotAliasInput(t *testing.T) {
	blob := []byte{1, 2, 3}
	n, err := ParseNoteRecord(with(validNoteRaw(), "encrypted_content", blob))
	require.NoError(t, err)
	blob[0] = 9
	assert.Equal(t, byte(1), n.EncryptedContent[0])
}

func TestDataRecord(t *testing.T) {
	for _, s := range models.DataSourceTypes {
		t.Run("source "+string(s), func(t *testing.T) {
			d, err := ParseDataRecord(with(validDataRaw(), "source_type", string(s)))
			require.NoError(t, err)
			assert.Equal(t, s, d.SourceType)
		})
	}

	_, err := ParseDataRecord(with(validDataRaw(), "source_type", "video"))
	requireViolation(t, err, "source_type", ConstraintEnum)

	_, err = ParseDataRecord(with(validDataRaw(), "note_id", nil))
	requireViolation(t, err, "note_id", ConstraintNotNull)

	_, err = ParseDataRecord(with(validDataRaw(), "id", ""))
	requireViolation(t, err, "id", ConstraintNonEmpty)

	_, err = ParseDataRecord(with(validDataRaw(), "note_id", ""))
	requireViolation(t, err, "note_id", ConstraintNonEmpty)
}

func TestValidateRecords_TypedRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	u := models.UserRecord{ID: "user:1", OsmID: "42", Password: "hash", CreatedAt: now}
	require.NoError(t, ValidateUserRecord(u))

	got, err := ParseUserRecord(u.Fields())
	require.NoError(t, err)
	assert.Equal(t, u, got)

	n := models.NoteRecord{ID: "note:1", UserID: "user:1", Status: models.NoteStatusDraft,
		EncryptedContent: []byte{1}, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, ValidateNoteRecord(n))

	n.EncryptedContent = nil
	requireViolation(t, ValidateNoteRecord(n), "encrypted_content", ConstraintNonEmpty)

	d := models.DataRecord{ID: "data:1", NoteID: "note:1", SourceType: "video",
		EncryptedContent: []byte{1}, CreatedAt: now, UpdatedAt: now}
	requireViolation(t, ValidateDataRecord(d), "source_type", ConstraintEnum)
}
