package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// DataService manages the evidence fragments captured for a note.
type DataService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	box         contentBox
	log         logging.Logger
}

func NewDataService(db *sql.DB, m repomanager.RepositoryManager, sealer cryptox.Sealer, log logging.Logger) *DataService {
	log = log.With("service", "data")
	return &DataService{
		db:          db,
		repomanager: m,
		box:         contentBox{sealer: sealer, log: log},
		log:         log,
	}
}

// Append attaches a new fragment to one of the user's notes. The note is
// share-locked while the fragment is inserted, so it cannot be committed in
// between.
func (s *DataService) Append(ctx context.Context, userID models.UserID, noteID models.NoteID, source models.DataSourceType, content models.DataContent) (*models.DecryptedData, error) {
	blob, err := s.box.sealData(ctx, content)
	if err != nil {
		return nil, err
	}

	now := timex.Now()
	rec := models.DataRecord{
		ID:               models.NewDataID(),
		NoteID:           noteID,
		SourceType:       source,
		EncryptedContent: blob,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := schema.ValidateDataRecord(rec); err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		note, err := lockNote(ctx, s.repomanager, tx, userID, noteID)
		if err != nil {
			return err
		}
		if lifecycle.IsTerminal(note.Status) {
			return ErrNoteFrozen
		}
		if err := s.repomanager.Data(tx).Create(ctx, rec); err != nil {
			return fmt.Errorf("error creating data: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "data appended", "data_id", rec.ID, "note_id", noteID, "source_type", source)
	view := models.ComposeData(rec, content)
	return &view, nil
}

// List returns the fragments of one of the user's notes, oldest first.
func (s *DataService) List(ctx context.Context, userID models.UserID, noteID models.NoteID) ([]models.DecryptedData, error) {
	if _, err := loadNote(ctx, s.repomanager, s.db, userID, noteID); err != nil {
		return nil, err
	}

	rows, err := s.repomanager.Data(s.db).ListByNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("error listing data: %w", err)
	}

	result := make([]models.DecryptedData, 0, len(rows))
	for _, raw := range rows {
		rec, err := schema.ParseDataRecord(raw)
		if err != nil {
			s.log.Error(ctx, "stored data record is invalid", "note_id", noteID, "error", err)
			return nil, err
		}
		view, err := s.box.openData(ctx, rec)
		if err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, nil
}

// Correct replaces a fragment's content, e.g. a fixed transcription. The
// source type is kept and the note is share-locked as in Append. Concurrent corrections lose with
// common.ErrVersionConflict.
func (s *DataService) Correct(ctx context.Context, userID models.UserID, dataID models.DataID, content models.DataContent) (*models.DecryptedData, error) {
	raw, err := s.repomanager.Data(s.db).Get(ctx, dataID)
	if err != nil {
		return nil, fmt.Errorf("error loading data: %w", err)
	}
	rec, err := schema.ParseDataRecord(raw)
	if err != nil {
		return nil, err
	}

	blob, err := s.box.sealData(ctx, content)
	if err != nil {
		return nil, err
	}

	updated := rec
	updated.EncryptedContent = blob
	updated.UpdatedAt = nextVersion(rec.UpdatedAt, timex.Now())
	if err := schema.ValidateDataRecord(updated); err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		note, err := lockNote(ctx, s.repomanager, tx, userID, rec.NoteID)
		if err != nil {
			return err
		}
		if lifecycle.IsTerminal(note.Status) {
			return ErrNoteFrozen
		}
		if err := s.repomanager.Data(tx).ConditionalUpdate(ctx, updated, rec.UpdatedAt); err != nil {
			if errors.Is(err, common.ErrVersionConflict) {
				s.log.Warn(ctx, "concurrent data correction rejected", "data_id", dataID)
			}
			return fmt.Errorf("error updating data: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := models.ComposeData(updated, content)
	return &view, nil
}
