// Package lifecycle enforces the note workflow:
//
//	draft -> processed -> committed
//
// Transitions only move one step forward; committed is terminal. The package
// holds no state. Concurrent transitions on the same note are serialized by
// the conditional update in the persistence layer.
package lifecycle

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/dmitrijs2005/osmnotes/internal/timex"
)

// next maps each non-terminal status to its only successor.
var next = map[models.NoteStatus]models.NoteStatus{
	models.NoteStatusDraft:     models.NoteStatusProcessed,
	models.NoteStatusProcessed: models.NoteStatusCommitted,
}

// InvalidTransitionError is returned when a requested status change breaks
// the workflow order. Retrying with the same arguments will fail again.
type InvalidTransitionError struct {
	From models.NoteStatus
	To   models.NoteStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == common.ErrInvalidTransition
}

// CanTransition reports whether a note in status current may move to
// requested. Self-transitions are not allowed.
func CanTransition(current, requested models.NoteStatus) bool {
	to, ok := next[current]
	return ok && to == requested
}

// Apply returns a copy of record moved to status requested with UpdatedAt set
// to the current instant. The input record is never modified.
func Apply(record models.NoteRecord, requested models.NoteStatus) (models.NoteRecord, error) {
	if !CanTransition(record.Status, requested) {
		return models.NoteRecord{}, &InvalidTransitionError{From: record.Status, To: requested}
	}
	out := record
	out.EncryptedContent = bytes.Clone(record.EncryptedContent)
	out.Status = requested
	out.UpdatedAt = timex.Now()
	return out, nil
}

// Next returns the status a note in current moves to, or false when current
// is terminal or unknown.
func Next(current models.NoteStatus) (models.NoteStatus, bool) {
	to, ok := next[current]
	return to, ok
}

// IsTerminal reports whether no transition leaves status. Notes in a
// terminal status no longer accept content edits or new data.
func IsTerminal(status models.NoteStatus) bool {
	_, ok := Next(status)
	return models.IsNoteStatus(string(status)) && !ok
}
