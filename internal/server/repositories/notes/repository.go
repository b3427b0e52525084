package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/models"
)

// Repository stores note records. Reads return raw rows for
// schema.ParseNoteRecord.
type Repository interface {
	Create(ctx context.Context, note models.NoteRecord) error
	Get(ctx context.Context, id models.NoteID) (map[string]any, error)
	// GetForShare is Get holding a share lock on the row until the
	// surrounding transaction ends, so status changes wait for it.
	GetForShare(ctx context.Context, id models.NoteID) (map[string]any, error)
	ListByUser(ctx context.Context, userID models.UserID) ([]map[string]any, error)
	// ConditionalUpdate writes note only if the stored updated_at still
	// equals expected; otherwise it returns common.ErrVersionConflict.
	ConditionalUpdate(ctx context.Context, note models.NoteRecord, expected time.Time) error
}
