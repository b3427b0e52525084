package models

import (
	"encoding/json"
	"time"
)

// ViewKind tags a decrypted view so it cannot be mistaken for the record it
// was built from.
type ViewKind string

const (
	KindDecryptedNote ViewKind = "DecryptedNote"
	KindDecryptedData ViewKind = "DecryptedData"
)

// DecryptedNote is a NoteRecord whose sealed content has been opened. It is
// built on every read, is never persisted, and is read-only: accessors return
// copies.
type DecryptedNote struct {
	kind      ViewKind
	id        NoteID
	userID    UserID
	status    NoteStatus
	content   NoteContent
	createdAt time.Time
	updatedAt time.Time
}

// ComposeNote merges an already validated record and content into a view.
// Neither argument is retained or modified.
func ComposeNote(record NoteRecord, content NoteContent) DecryptedNote {
	return DecryptedNote{
		kind:      KindDecryptedNote,
		id:        record.ID,
		userID:    record.UserID,
		status:    record.Status,
		content:   content.Clone(),
		createdAt: record.CreatedAt,
		updatedAt: record.UpdatedAt,
	}
}

// Kind is KindDecryptedNote for views built by ComposeNote and empty for the
// zero value.
func (n DecryptedNote) Kind() ViewKind       { return n.kind }
func (n DecryptedNote) ID() NoteID           { return n.id }
func (n DecryptedNote) UserID() UserID       { return n.userID }
func (n DecryptedNote) Status() NoteStatus   { return n.status }
func (n DecryptedNote) Content() NoteContent { return n.content.Clone() }
func (n DecryptedNote) CreatedAt() time.Time { return n.createdAt }
func (n DecryptedNote) UpdatedAt() time.Time { return n.updatedAt }

func (n DecryptedNote) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      ViewKind    `json:"kind"`
		ID        NoteID      `json:"id"`
		UserID    UserID      `json:"user_id"`
		Status    NoteStatus  `json:"status"`
		Content   NoteContent `json:"content"`
		CreatedAt time.Time   `json:"created_at"`
		UpdatedAt time.Time   `json:"updated_at"`
	}{n.kind, n.id, n.userID, n.status, n.content, n.createdAt, n.updatedAt})
}

// DecryptedData is a DataRecord whose sealed content has been opened.
type DecryptedData struct {
	kind       ViewKind
	id         DataID
	noteID     NoteID
	sourceType DataSourceType
	content    DataContent
	createdAt  time.Time
	updatedAt  time.Time
}

// ComposeData merges an already validated record and content into a view.
func ComposeData(record DataRecord, content DataContent) DecryptedData {
	return DecryptedData{
		kind:       KindDecryptedData,
		id:         record.ID,
		noteID:     record.NoteID,
		sourceType: record.SourceType,
		content:    content.Clone(),
		createdAt:  record.CreatedAt,
		updatedAt:  record.UpdatedAt,
	}
}

func (d DecryptedData) Kind() ViewKind             { return d.kind }
func (d DecryptedData) ID() DataID                 { return d.id }
func (d DecryptedData) NoteID() NoteID             { return d.noteID }
func (d DecryptedData) SourceType() DataSourceType { return d.sourceType }
func (d DecryptedData) Content() DataContent       { return d.content.Clone() }
func (d DecryptedData) CreatedAt() time.Time       { return d.createdAt }
func (d DecryptedData) UpdatedAt() time.Time       { return d.updatedAt }

func (d DecryptedData) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       ViewKind       `json:"kind"`
		ID         DataID         `json:"id"`
		NoteID     NoteID         `json:"note_id"`
		SourceType DataSourceType `json:"source_type"`
		Content    DataContent    `json:"content"`
		CreatedAt  time.Time      `json:"created_at"`
		UpdatedAt  time.Time      `json:"updated_at"`
	}{d.kind, d.id, d.noteID, d.sourceType, d.content, d.createdAt, d.updatedAt})
}
