package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/cryptox"
	"github.com/dmitrijs2005/osmnotes/internal/logging"
	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/dmitrijs2005/osmnotes/internal/schema"
)

// contentBox seals validated content and opens stored blobs back into
// validated content. Opening fails closed: callers get either the whole
// content or an error matching common.ErrContentUnavailable.
type contentBox struct {
	sealer cryptox.Sealer
	log    logging.Logger
}

func (b contentBox) sealNote(ctx context.Context, c models.NoteContent) ([]byte, error) {
	plain, err := schema.EncodeNoteContent(c)
	if err != nil {
		return nil, err
	}
	return b.seal(ctx, plain)
}

func (b contentBox) sealData(ctx context.Context, c models.DataContent) ([]byte, error) {
	plain, err := schema.EncodeDataContent(c)
	if err != nil {
		return nil, err
	}
	return b.seal(ctx, plain)
}

func (b contentBox) seal(ctx context.Context, plain []byte) ([]byte, error) {
	defer common.WipeByteArray(plain)
	blob, err := b.sealer.Seal(ctx, plain)
	if err != nil {
		return nil, fmt.Errorf("error sealing content: %w", err)
	}
	return blob, nil
}

func (b contentBox) openNote(ctx context.Context, rec models.NoteRecord) (models.DecryptedNote, error) {
	plain, err := b.open(ctx, rec.EncryptedContent, "note_id", rec.ID)
	if err != nil {
		return models.DecryptedNote{}, err
	}
	defer common.WipeByteArray(plain)

	content, err := schema.NoteContent.ParseJSON(plain)
	if err != nil {
		b.log.Error(ctx, "decrypted note content is invalid", "note_id", rec.ID, "error", err)
		return models.DecryptedNote{}, fmt.Errorf("%w: %w", common.ErrContentUnavailable, err)
	}
	return models.ComposeNote(rec, content), nil
}

func (b contentBox) openData(ctx context.Context, rec models.DataRecord) (models.DecryptedData, error) {
	plain, err := b.open(ctx, rec.EncryptedContent, "data_id", rec.ID)
	if err != nil {
		return models.DecryptedData{}, err
	}
	defer common.WipeByteArray(plain)

	content, err := schema.DataContent.ParseJSON(plain)
	if err != nil {
		b.log.Error(ctx, "decrypted data content is invalid", "data_id", rec.ID, "error", err)
		return models.DecryptedData{}, fmt.Errorf("%w: %w", common.ErrContentUnavailable, err)
	}
	return models.ComposeData(rec, content), nil
}

func (b contentBox) open(ctx context.Context, blob []byte, idKey string, id any) ([]byte, error) {
	plain, err := b.sealer.Open(ctx, blob)
	if err != nil {
		b.log.Error(ctx, "content unavailable", idKey, id, "error", err)
		if !errors.Is(err, common.ErrContentUnavailable) {
			err = &cryptox.DecryptionError{Err: err}
		}
		return nil, err
	}
	return plain, nil
}
