package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/models"
)

// Repository stores user records. Reads return the raw row; callers validate
// it with schema.ParseUserRecord.
type Repository interface {
	Create(ctx context.Context, user models.UserRecord) error
	Get(ctx context.Context, id models.UserID) (map[string]any, error)
	GetByOsmID(ctx context.Context, osmID string) (map[string]any, error)
	TouchLastLogin(ctx context.Context, id models.UserID, at time.Time) error
}
