package data

import (
	"context"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/models"
)

// Repository stores data fragments. Reads return raw rows for
// schema.ParseDataRecord.
type Repository interface {
	Create(ctx context.Context, fragment models.DataRecord) error
	Get(ctx context.Context, id models.DataID) (map[string]any, error)
	ListByNote(ctx context.Context, noteID models.NoteID) ([]map[string]any, error)
	// ConditionalUpdate replaces the encrypted content if the stored
	// updated_at still equals expected; otherwise common.ErrVersionConflict.
	ConditionalUpdate(ctx context.Context, fragment models.DataRecord, expected time.Time) error
}
