package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studio-booking-backend/internal/db"
	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/store"
)

// failingStore counts store hits and fails every admin lookup. It
// backs the fail-closed and no-store-hit tests.
type failingStore struct {
	store.Store
	calls int
}

func (f *failingStore) HasActiveAdmin(ctx context.Context, email string) (bool, error) {
	f.calls++
	return false, errors.New("store is down")
}

func newTestGate(t *testing.T, allowList []string) (*Gate, store.Store) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	// A pooled second connection would see its own empty in-memory DB.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(testDB))

	s := store.NewGormStore(testDB)
	return NewGate(s, allowList, 30*time.Second), s
}

func TestGate_EmptyEmailSkipsStore(t *testing.T) {
	fs := &failingStore{}
	gate := NewGate(fs, nil, time.Second)

	assert.False(t, gate.IsAdmin(context.Background(), ""))
	assert.Equal(t, 0, fs.calls, "empty email must not reach the store")
}

func TestGate_AllowListBypassesStore(t *testing.T) {
	fs := &failingStore{}
	gate := NewGate(fs, []string{"owner@studio.example"}, time.Second)

	assert.True(t, gate.IsAdmin(context.Background(), "owner@studio.example"))
	assert.Equal(t, 0, fs.calls, "allow-listed email must not reach the store")
}

func TestGate_StoreFailureFailsClosed(t *testing.T) {
	fs := &failingStore{}
	gate := NewGate(fs, nil, time.Second)

	assert.False(t, gate.IsAdmin(context.Background(), "someone@example.com"))
	assert.Equal(t, 1, fs.calls)

	// Failures are not cached; the next check hits the store again.
	assert.False(t, gate.IsAdmin(context.Background(), "someone@example.com"))
	assert.Equal(t, 2, fs.calls)
}

func TestGate_GrantRevokeLifecycle(t *testing.T) {
	ctx := context.Background()
	gate, s := newTestGate(t, nil)

	const email = "a@x.com"

	assert.False(t, gate.IsAdmin(ctx, email))

	_, err := gate.Grant(ctx, email)
	require.NoError(t, err)
	assert.True(t, gate.IsAdmin(ctx, email))

	require.NoError(t, gate.Revoke(ctx, email))
	assert.False(t, gate.IsAdmin(ctx, email))

	// Exactly one record exists and it is inactive.
	var records []model.AdminRecord
	require.NoError(t, s.DB().Where("email = ?", email).Find(&records).Error)
	require.Len(t, records, 1)
	assert.False(t, records[0].Active)
}

func TestGate_RegrantDoesNotDuplicateActiveRows(t *testing.T) {
	ctx := context.Background()
	gate, s := newTestGate(t, nil)

	const email = "a@x.com"

	_, err := gate.Grant(ctx, email)
	require.NoError(t, err)
	_, err = gate.Grant(ctx, email)
	require.NoError(t, err)

	var active int64
	require.NoError(t, s.DB().Model(&model.AdminRecord{}).
		Where("email = ? AND active = ?", email, true).
		Count(&active).Error)
	assert.Equal(t, int64(1), active)

	// Revoke then re-grant reactivates the existing row.
	require.NoError(t, gate.Revoke(ctx, email))
	_, err = gate.Grant(ctx, email)
	require.NoError(t, err)

	var total int64
	require.NoError(t, s.DB().Model(&model.AdminRecord{}).
		Where("email = ?", email).
		Count(&total).Error)
	assert.Equal(t, int64(1), total)
	assert.True(t, gate.IsAdmin(ctx, email))
}

func TestGate_RevokeNonAdminIsNoop(t *testing.T) {
	gate, _ := newTestGate(t, nil)
	assert.NoError(t, gate.Revoke(context.Background(), "nobody@example.com"))
}

func TestGate_CacheInvalidationOnMutation(t *testing.T) {
	ctx := context.Background()
	gate, _ := newTestGate(t, nil)

	const email = "cached@example.com"

	// Prime the negative decision cache.
	assert.False(t, gate.IsAdmin(ctx, email))

	_, err := gate.Grant(ctx, email)
	require.NoError(t, err)
	assert.True(t, gate.IsAdmin(ctx, email), "grant must invalidate the cached decision")

	require.NoError(t, gate.Revoke(ctx, email))
	assert.False(t, gate.IsAdmin(ctx, email), "revoke must invalidate the cached decision")
}

func TestGate_WatchDeliversAndCancelStops(t *testing.T) {
	ctx := context.Background()
	gate, _ := newTestGate(t, nil)

	events, cancel := gate.Watch()

	_, err := gate.Grant(ctx, "w@x.com")
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, EventGranted, ev.Kind)
		assert.Equal(t, "w@x.com", ev.Email)
		assert.True(t, ev.Record.Active)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for grant event")
	}

	cancel()

	// After cancel the channel is closed and no revoke event arrives.
	require.NoError(t, gate.Revoke(ctx, "w@x.com"))
	ev, open := <-events
	assert.False(t, open, "channel should be closed after cancel, got %+v", ev)

	// Cancel is idempotent.
	cancel()
}
