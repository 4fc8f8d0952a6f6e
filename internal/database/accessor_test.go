package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Accessor {
	t.Helper()
	db, err := Open("file:" + filepath.Join(t.TempDir(), "accessor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccessor(db)
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "pgx", DriverFor("postgres://u:p@localhost/db"))
	assert.Equal(t, "pgx", DriverFor("POSTGRESQL://u@localhost/db"))
	assert.Equal(t, "sqlite", DriverFor("file:inventory.db?_pragma=foreign_keys(1)"))
	assert.Equal(t, "sqlite", DriverFor("inventory.db"))
}

func TestAccessorMemoizesConnection(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()

	assert.False(t, a.Acquired())
	first, err := a.Acquire(ctx)
	require.NoError(t, err)
	second, err := a.Acquire(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, a.Acquired())

	var one int
	require.NoError(t, first.GetContext(ctx, &one, "SELECT 1"))
	assert.Equal(t, 1, one)
}

func TestAccessorReleaseOnce(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()

	_, err := a.Acquire(ctx)
	require.NoError(t, err)

	require.NoError(t, a.Release())
	assert.False(t, a.Acquired())
	assert.NoError(t, a.Release(), "second release is a no-op")

	_, err = a.Acquire(ctx)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestAccessorReleaseWithoutAcquire(t *testing.T) {
	a := openTemp(t)
	assert.NoError(t, a.Release())
	assert.False(t, a.Acquired())
}

func TestAccessorReturnsConnectionToPool(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()

	_, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Release())

	// The pool is capped at one connection for SQLite; a leaked handle would block here.
	next := NewAccessor(a.db)
	q, err := next.Acquire(ctx)
	require.NoError(t, err)
	var one int
	require.NoError(t, q.GetContext(ctx, &one, "SELECT 1"))
	require.NoError(t, next.Release())
}
