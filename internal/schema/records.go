package schema

import (
	"github.com/dmitrijs2005/osmnotes/internal/models"
)

// UserRecord validates a persisted user. last_login_at and
// encrypted_openai_key must be present but may be null.
var UserRecord = newSchema("UserRecord", func(p path, raw any) (models.UserRecord, *ValidationError) {
	o := newObject(p, raw)
	u := models.UserRecord{
		ID:        models.UserID(required(o, "id", nonEmptyString)),
		OsmID:     required(o, "osm_id", nonEmptyString),
		Password:  required(o, "password", nonEmptyString),
		CreatedAt: required(o, "created_at", instant),
	}
	if key := nullable(o, "encrypted_openai_key", byteSequence); key != nil {
		u.EncryptedOpenAIKey = *key
	}
	u.LastLoginAt = nullable(o, "last_login_at", instant)
	return u, o.err
})

// NoteRecord validates a persisted note envelope. The sealed content is only
// checked for being a non-empty byte sequence.
var NoteRecord = newSchema("NoteRecord", func(p path, raw any) (models.NoteRecord, *ValidationError) {
	o := newObject(p, raw)
	n := models.NoteRecord{
		ID:               models.NoteID(required(o, "id", nonEmptyString)),
		UserID:           models.UserID(required(o, "user_id", nonEmptyString)),
		Status:           required(o, "status", noteStatus),
		EncryptedContent: required(o, "encrypted_content", byteSequence),
		CreatedAt:        required(o, "created_at", instant),
		UpdatedAt:        required(o, "updated_at", instant),
	}
	return n, o.err
})

// DataRecord validates a persisted data fragment envelope.
var DataRecord = newSchema("DataRecord", func(p path, raw any) (models.DataRecord, *ValidationError) {
	o := newObject(p, raw)
	d := models.DataRecord{
		ID:               models.DataID(required(o, "id", nonEmptyString)),
		NoteID:           models.NoteID(required(o, "note_id", nonEmptyString)),
		SourceType:       required(o, "source_type", dataSourceType),
		EncryptedContent: required(o, "encrypted_content", byteSequence),
		CreatedAt:        required(o, "created_at", instant),
		UpdatedAt:        required(o, "updated_at", instant),
	}
	return d, o.err
})

func ParseUserRecord(raw any) (models.UserRecord, error) { return UserRecord.Parse(raw) }
func ParseNoteRecord(raw any) (models.NoteRecord, error) { return NoteRecord.Parse(raw) }
func ParseDataRecord(raw any) (models.DataRecord, error) { return DataRecord.Parse(raw) }

// ValidateUserRecord checks a record about to be written.
func ValidateUserRecord(r models.UserRecord) error {
	_, err := UserRecord.Parse(r.Fields())
	return err
}

// ValidateNoteRecord checks a record about to be written.
func ValidateNoteRecord(r models.NoteRecord) error {
	_, err := NoteRecord.Parse(r.Fields())
	return err
}

// ValidateDataRecord checks a record about to be written.
func ValidateDataRecord(r models.DataRecord) error {
	_, err := DataRecord.Parse(r.Fields())
	return err
}
