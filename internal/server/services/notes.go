package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/cryptox"
	"github.com/dmitrijs2005/osmnotes/internal/dbx"
	"github.com/dmitrijs2005/osmnotes/internal/lifecycle"
	"github.com/dmitrijs2005/osmnotes/internal/logging"
	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/dmitrijs2005/osmnotes/internal/schema"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/osmnotes/internal/timex"
)

// ErrNoteFrozen is returned for edits to a note in a terminal status.
var ErrNoteFrozen = fmt.Errorf("%w: note is committed", common.ErrInvalidTransition)

// NoteService manages a user's notes. Content is sealed before it reaches
// the repository and only leaves the service as a models.DecryptedNote.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	box         contentBox
	log         logging.Logger
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, sealer cryptox.Sealer, log logging.Logger) *NoteService {
	log = log.With("service", "notes")
	return &NoteService{
		db:          db,
		repomanager: m,
		box:         contentBox{sealer: sealer, log: log},
		log:         log,
	}
}

// Create stores a new draft note.
func (s *NoteService) Create(ctx context.Context, userID models.UserID, content models.NoteContent) (*models.DecryptedNote, error) {
	blob, err := s.box.sealNote(ctx, content)
	if err != nil {
		return nil, err
	}

	now := timex.Now()
	rec := models.NoteRecord{
		ID:               models.NewNoteID(),
		UserID:           userID,
		Status:           models.NoteStatusDraft,
		EncryptedContent: blob,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := schema.ValidateNoteRecord(rec); err != nil {
		return nil, err
	}

	if err := s.repomanager.Notes(s.db).Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	s.log.Info(ctx, "note created", "note_id", rec.ID, "user_id", userID)
	view := models.ComposeNote(rec, content)
	return &view, nil
}

// Get returns one of the user's notes. Notes of other users are reported as
// common.ErrorNotFound.
func (s *NoteService) Get(ctx context.Context, userID models.UserID, noteID models.NoteID) (*models.DecryptedNote, error) {
	rec, err := loadNote(ctx, s.repomanager, s.db, userID, noteID)
	if err != nil {
		return nil, err
	}
	view, err := s.box.openNote(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// List returns all of the user's notes, oldest first. One unreadable note
// fails the whole call.
func (s *NoteService) List(ctx context.Context, userID models.UserID) ([]models.DecryptedNote, error) {
	rows, err := s.repomanager.Notes(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}

	result := make([]models.DecryptedNote, 0, len(rows))
	for _, raw := range rows {
		rec, err := schema.ParseNoteRecord(raw)
		if err != nil {
			s.log.Error(ctx, "stored note record is invalid", "user_id", userID, "error", err)
			return nil, err
		}
		if rec.UserID != userID {
			continue
		}
		view, err := s.box.openNote(ctx, rec)
		if err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, nil
}

// UpdateContent replaces the note content wholesale. The write only lands if
// nobody changed the note since it was read.
func (s *NoteService) UpdateContent(ctx context.Context, userID models.UserID, noteID models.NoteID, content models.NoteContent) (*models.DecryptedNote, error) {
	rec, err := loadNote(ctx, s.repomanager, s.db, userID, noteID)
	if err != nil {
		return nil, err
	}
	if lifecycle.IsTerminal(rec.Status) {
		return nil, ErrNoteFrozen
	}

	blob, err := s.box.sealNote(ctx, content)
	if err != nil {
		return nil, err
	}

	updated := rec
	updated.EncryptedContent = blob
	updated.UpdatedAt = timex.Now()

	updated, err = s.write(ctx, updated, rec)
	if err != nil {
		return nil, err
	}

	view := models.ComposeNote(updated, content)
	return &view, nil
}

// Transition moves the note one step along draft -> processed -> committed.
func (s *NoteService) Transition(ctx context.Context, userID models.UserID, noteID models.NoteID, to models.NoteStatus) (*models.DecryptedNote, error) {
	rec, err := loadNote(ctx, s.repomanager, s.db, userID, noteID)
	if err != nil {
		return nil, err
	}

	updated, err := lifecycle.Apply(rec, to)
	if err != nil {
		return nil, err
	}

	updated, err = s.write(ctx, updated, rec)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "note status changed", "note_id", noteID, "from", rec.Status, "to", updated.Status)

	view, err := s.box.openNote(ctx, updated)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// write stores updated if the note still carries prev's version. The stored
// updated_at is the version, so it must move strictly forward.
func (s *NoteService) write(ctx context.Context, updated, prev models.NoteRecord) (models.NoteRecord, error) {
	updated.UpdatedAt = nextVersion(prev.UpdatedAt, updated.UpdatedAt)
	if err := schema.ValidateNoteRecord(updated); err != nil {
		return models.NoteRecord{}, err
	}

	err := s.repomanager.Notes(s.db).ConditionalUpdate(ctx, updated, prev.UpdatedAt)
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			s.log.Warn(ctx, "concurrent note update rejected", "note_id", updated.ID)
		}
		return models.NoteRecord{}, fmt.Errorf("error updating note: %w", err)
	}
	return updated, nil
}

func nextVersion(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(timex.StoragePrecision)
}

// loadNote reads and validates a note and checks it belongs to userID.
func loadNote(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, userID models.UserID, noteID models.NoteID) (models.NoteRecord, error) {
	raw, err := m.Notes(db).Get(ctx, noteID)
	return ownedNote(raw, err, userID)
}

// lockNote is loadNote inside a transaction. The note's status cannot change
// until tx ends.
func lockNote(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, userID models.UserID, noteID models.NoteID) (models.NoteRecord, error) {
	raw, err := m.Notes(tx).GetForShare(ctx, noteID)
	return ownedNote(raw, err, userID)
}

func ownedNote(raw map[string]any, err error, userID models.UserID) (models.NoteRecord, error) {
	if err != nil {
		return models.NoteRecord{}, fmt.Errorf("error loading note: %w", err)
	}
	rec, err := schema.ParseNoteRecord(raw)
	if err != nil {
		return models.NoteRecord{}, err
	}
	if rec.UserID != userID {
		return models.NoteRecord{}, fmt.Errorf("error loading note: %w", common.ErrorNotFound)
	}
	return rec, nil
}
