package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Record identifiers are table-prefixed strings ("note:7c9e..."). Distinct
// types keep a note id from being passed where a user id is expected.
type (
	UserID string
	NoteID string
	DataID string
)

func NewUserID() UserID { return UserID(newRecordID("user")) }
func NewNoteID() NoteID { return NoteID(newRecordID("note")) }
func NewDataID() DataID { return DataID(newRecordID("data")) }

func newRecordID(table string) string {
	return table + ":" + uuid.NewString()
}

// UserRecord is one authenticated OSM identity.
type UserRecord struct {
	ID    UserID
	OsmID string

	// Password is the stored hash of the derived password, never the secret.
	Password string

	// EncryptedOpenAIKey is nil when the user has not stored a key.
	EncryptedOpenAIKey []byte
	CreatedAt          time.Time

	// LastLoginAt is nil until the first successful signin.
	LastLoginAt *time.Time
}

// NoteRecord is the persisted envelope of a note.
type NoteRecord struct {
	ID               NoteID
	UserID           UserID
	Status           NoteStatus
	EncryptedContent []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DataRecord is one persisted evidence fragment of a note.
type DataRecord struct {
	ID               DataID
	NoteID           NoteID
	SourceType       DataSourceType
	EncryptedContent []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Fields returns r as a raw field map, the shape record schemas accept.
// A nil key or login time is reported as an explicit nil.
func (r UserRecord) Fields() map[string]any {
	var key, lastLogin any
	if r.EncryptedOpenAIKey != nil {
		key = bytes.Clone(r.EncryptedOpenAIKey)
	}
	if r.LastLoginAt != nil {
		lastLogin = *r.LastLoginAt
	}
	return map[string]any{
		"id":                   string(r.ID),
		"osm_id":               r.OsmID,
		"password":             r.Password,
		"encrypted_openai_key": key,
		"created_at":           r.CreatedAt,
		"last_login_at":        lastLogin,
	}
}

// Fields returns r as a raw field map.
func (r NoteRecord) Fields() map[string]any {
	return map[string]any{
		"id":                string(r.ID),
		"user_id":           string(r.UserID),
		"status":            string(r.Status),
		"encrypted_content": bytes.Clone(r.EncryptedContent),
		"created_at":        r.CreatedAt,
		"updated_at":        r.UpdatedAt,
	}
}

// Fields returns r as a raw field map.
func (r DataRecord) Fields() map[string]any {
	return map[string]any{
		"id":                string(r.ID),
		"note_id":           string(r.NoteID),
		"source_type":       string(r.SourceType),
		"encrypted_content": bytes.Clone(r.EncryptedContent),
		"created_at":        r.CreatedAt,
		"updated_at":        r.UpdatedAt,
	}
}
