package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/cryptox"
	"github.com/dmitrijs2005/osmnotes/internal/dbx"
	"github.com/dmitrijs2005/osmnotes/internal/logging"
	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/dmitrijs2005/osmnotes/internal/server/config"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/data"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/users"
	"github.com/dmitrijs2005/osmnotes/internal/timex"
	"github.com/stretchr/testify/require"
)

// --- in-memory repositories ---

type fakeUsers struct {
	byID      map[models.UserID]models.UserRecord
	rawByOsm  map[string]map[string]any
	createErr error
	getErr    error
	touched   []models.UserID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[models.UserID]models.UserRecord{}, rawByOsm: map[string]map[string]any{}}
}

func (f *fakeUsers) Create(_ context.Context, u models.UserRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.rawByOsm[u.OsmID]; ok {
		return common.ErrorAlreadyExists
	}
	f.byID[u.ID] = u
	f.rawByOsm[u.OsmID] = u.Fields()
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id models.UserID) (map[string]any, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Fields(), nil
}

func (f *fakeUsers) GetByOsmID(_ context.Context, osmID string) (map[string]any, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	raw, ok := f.rawByOsm[osmID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return raw, nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id models.UserID, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.LastLoginAt = &at
	f.byID[id] = u
	f.rawByOsm[u.OsmID] = u.Fields()
	f.touched = append(f.touched, id)
	return nil
}

type fakeNotes struct {
	rows      map[models.NoteID]map[string]any
	order     []models.NoteID
	createErr error
	updateErr error
	updates   int
	// shareLocks counts GetForShare calls.
	shareLocks int
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{rows: map[models.NoteID]map[string]any{}}
}

func (f *fakeNotes) put(n models.NoteRecord) {
	if _, ok := f.rows[n.ID]; !ok {
		f.order = append(f.order, n.ID)
	}
	f.rows[n.ID] = n.Fields()
}

func (f *fakeNotes) Create(_ context.Context, n models.NoteRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.put(n)
	return nil
}

func (f *fakeNotes) Get(_ context.Context, id models.NoteID) (map[string]any, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return row, nil
}

func (f *fakeNotes) GetForShare(ctx context.Context, id models.NoteID) (map[string]any, error) {
	f.shareLocks++
	return f.Get(ctx, id)
}

func (f *fakeNotes) ListByUser(_ context.Context, userID models.UserID) ([]map[string]any, error) {
	var out []map[string]any
	for _, id := range f.order {
		if f.rows[id]["user_id"] == string(userID) {
			out = append(out, f.rows[id])
		}
	}
	return out, nil
}

func (f *fakeNotes) ConditionalUpdate(_ context.Context, n models.NoteRecord, expected time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	row, ok := f.rows[n.ID]
	if !ok || !row["updated_at"].(time.Time).Equal(expected) {
		return common.ErrVersionConflict
	}
	f.updates++
	f.put(n)
	return nil
}

type fakeData struct {
	rows      map[models.DataID]map[string]any
	order     []models.DataID
	createErr error
	// concurrentWriter moves the stored version forward between read and
	// write.
	concurrentWriter bool
}

func newFakeData() *fakeData {
	return &fakeData{rows: map[models.DataID]map[string]any{}}
}

func (f *fakeData) put(d models.DataRecord) {
	if _, ok := f.rows[d.ID]; !ok {
		f.order = append(f.order, d.ID)
	}
	f.rows[d.ID] = d.Fields()
}

func (f *fakeData) Create(_ context.Context, d models.DataRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.put(d)
	return nil
}

func (f *fakeData) Get(_ context.Context, id models.DataID) (map[string]any, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return row, nil
}

func (f *fakeData) ListByNote(_ context.Context, noteID models.NoteID) ([]map[string]any, error) {
	var out []map[string]any
	for _, id := range f.order {
		if f.rows[id]["note_id"] == string(noteID) {
			out = append(out, f.rows[id])
		}
	}
	return out, nil
}

func (f *fakeData) ConditionalUpdate(_ context.Context, d models.DataRecord, expected time.Time) error {
	row, ok := f.rows[d.ID]
	if ok && f.concurrentWriter {
		row["updated_at"] = expected.Add(time.Second)
	}
	if !ok || !row["updated_at"].(time.Time).Equal(expected) {
		return common.ErrVersionConflict
	}
	f.put(d)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsers
	n *fakeNotes
	d *fakeData
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsers(), n: newFakeNotes(), d: newFakeData()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository               { return m.u }
func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository               { return m.n }
func (m *fakeRepoManager) Data(dbx.DBTX) data.Repository                 { return m.d }

// --- environment ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	var c config.Config
	c.LoadDefaults()
	c.SecretKey = "test-secret"
	c.TokenValidityDuration = time.Hour
	return &c
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testSealer() *cryptox.AESSealer {
	return cryptox.NewAESSealer(cryptox.StaticKey(bytes.Repeat([]byte{0x42}, cryptox.KeySize)))
}

// freezeClock pins timex.Now and returns a function that advances it.
func freezeClock(t *testing.T, start time.Time) func(d time.Duration) {
	t.Helper()
	orig := timex.Now
	now := start
	timex.Now = func() time.Time { return now }
	t.Cleanup(func() { timex.Now = orig })
	return func(d time.Duration) { now = now.Add(d) }
}

func ptr[T any](v T) *T { return &v }

func sampleNoteContent() models.NoteContent {
	return models.NoteContent{
		OsmObject: models.OsmObject{Type: models.OsmNode, ID: "123456", Version: ptr(3)},
		Location:  models.Location{Lat: 52.52, Lng: 13.405},
		Title:     "Missing opening hours",
	}
}

func sampleDataContent() models.DataContent {
	return models.DataContent{
		Content:    "Bakery open Mo-Fr 07:00-18:00",
		Confidence: ptr(0.87),
	}
}
