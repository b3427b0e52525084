package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleNote() (NoteRecord, NoteContent) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := NoteRecord{
		ID:               "note:456",
		UserID:           "user:123",
		Status:           NoteStatusProcessed,
		EncryptedContent: []byte{10, 20, 30},
		CreatedAt:        created,
		UpdatedAt:        created.Add(time.Hour),
	}
	content := NoteContent{
		OsmObject: OsmObject{Type: OsmWay, ID: "987", Version: ptr(3)},
		Location:  Location{Lat: 52.52, Lng: 13.405},
		Title:     "Bench missing",
	}
	return rec, content
}

func TestComposeNote_CarriesRecordAndContent(t *testing.T) {
	rec, content := sampleNote()

	view := ComposeNote(rec, content)

	assert.Equal(t, KindDecryptedNote, view.Kind())
	assert.Equal(t, rec.ID, view.ID())
	assert.Equal(t, rec.UserID, view.UserID())
	assert.Equal(t, rec.Status, view.Status())
	assert.Equal(t, rec.CreatedAt, view.CreatedAt())
	assert.Equal(t, rec.UpdatedAt, view.UpdatedAt())
	assert.Empty(t, cmp.Diff(content, view.Content()))
}

func TestComposeNote_DoesNotShareState(t *testing.T) {
	rec, content := sampleNote()
	recBefore, contentBefore := sampleNote()

	view := ComposeNote(rec, content)

	got := view.Content()
	*got.OsmObject.Version = 99
	got.Title = "changed"

	*content.OsmObject.Version = 42

	assert.Equal(t, 3, *view.Content().OsmObject.Version)
	assert.Equal(t, "Bench missing", view.Content().Title)
	assert.Empty(t, cmp.Diff(recBefore, rec))
	assert.Equal(t, contentBefore.Title, content.Title)
}

func TestComposeData_CarriesRecordAndContent(t *testing.T) {
	now := time.Now().UTC()
	rec := DataRecord{
		ID: "data:789", NoteID: "note:456", SourceType: DataSourceImage,
		EncryptedContent: []byte{40, 50, 60}, CreatedAt: now, UpdatedAt: now,
	}
	content := DataContent{
		Content:    "OCR text",
		Confidence: ptr(0.8),
		ProcessingMeta: &ProcessingMeta{
			APIModel:         ptr("gpt-4o"),
			ProcessingTime:   ptr(now),
			OriginalFilename: ptr("sign.jpg"),
		},
	}

	view := ComposeData(rec, content)
	assert.Equal(t, KindDecryptedData, view.Kind())
	assert.Equal(t, rec.NoteID, view.NoteID())
	assert.Equal(t, rec.SourceType, view.SourceType())
	assert.Empty(t, cmp.Diff(content, view.Content()))

	*content.Confidence = 0.1
	*content.ProcessingMeta.APIModel = "other"
	assert.Equal(t, 0.8, *view.Content().Confidence)
	assert.Equal(t, "gpt-4o", *view.Content().ProcessingMeta.APIModel)
}

func TestZeroView_HasNoKind(t *testing.T) {
	assert.Equal(t, ViewKind(""), DecryptedNote{}.Kind())
	assert.Equal(t, ViewKind(""), DecryptedData{}.Kind())
}

func TestDecryptedNote_MarshalJSON_OmitsCiphertext(t *testing.T) {
	rec, content := sampleNote()
	b, err := json.Marshal(ComposeNote(rec, content))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "DecryptedNote", m["kind"])
	assert.Equal(t, "note:456", m["id"])
	assert.NotContains(t, m, "encrypted_content")
	assert.Contains(t, m, "content")
}
