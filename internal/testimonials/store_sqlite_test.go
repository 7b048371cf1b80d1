package testimonials

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"visaserbia/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	return store
}

func newTestimonial(name string, active bool, age time.Duration) *core.Testimonial {
	return &core.Testimonial{
		ID:          uuid.NewString(),
		ClientName:  name,
		VisaType:    "Visado de Turismo",
		Description: "Excelente servicio, visa aprobada en un mes",
		ImageData:   "data:image/jpeg;base64,aGVsbG8=",
		CreatedAt:   time.Now().UTC().Add(-age),
		IsActive:    active,
	}
}

func TestSQLiteStoreListActive(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	older := newTestimonial("Carlos Pérez", true, 2*time.Hour)
	newer := newTestimonial("María González", true, 0)
	hidden := newTestimonial("Ana Rodríguez", false, time.Hour)

	for _, tm := range []*core.Testimonial{older, newer, hidden} {
		require.NoError(t, store.Create(ctx, tm))
	}

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2, "inactive testimonials stay hidden")
	assert.Equal(t, newer.ID, active[0].ID, "newest first")
	assert.Equal(t, older.ID, active[1].ID)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteStorePublicLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < maxPublic+5; i++ {
		tm := newTestimonial("Cliente", true, time.Duration(i)*time.Minute)
		require.NoError(t, store.Create(ctx, tm))
	}

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, maxPublic)
}

func TestSQLiteStoreToggle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tm := newTestimonial("Carlos Pérez", true, 0)
	require.NoError(t, store.Create(ctx, tm))

	state, err := store.Toggle(ctx, tm.ID)
	require.NoError(t, err)
	assert.False(t, state)

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	state, err = store.Toggle(ctx, tm.ID)
	require.NoError(t, err)
	assert.True(t, state)

	_, err = store.Toggle(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tm := newTestimonial("Carlos Pérez", true, 0)
	require.NoError(t, store.Create(ctx, tm))

	require.NoError(t, store.Delete(ctx, tm.ID))
	assert.ErrorIs(t, store.Delete(ctx, tm.ID), ErrNotFound)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
