package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrReleased is returned by Acquire once the accessor has been released.
var ErrReleased = errors.New("database: accessor already released")

// Accessor hands out one connection for the lifetime of a unit of work.
// The connection is opened on first Acquire and reused until Release.
// An Accessor is owned by a single request and is not safe for concurrent use.
type Accessor struct {
	db       *sqlx.DB
	conn     *sqlx.Conn
	released bool
}

// NewAccessor returns an accessor drawing its connection from db.
func NewAccessor(db *sqlx.DB) *Accessor {
	return &Accessor{db: db}
}

// Acquire returns the unit of work's connection, opening it on first use.
func (a *Accessor) Acquire(ctx context.Context) (Queryer, error) {
	if a.released {
		return nil, ErrReleased
	}
	if a.conn != nil {
		return a.conn, nil
	}
	conn, err := a.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	a.conn = conn
	return conn, nil
}

// Acquired reports whether a connection is currently held.
func (a *Accessor) Acquired() bool {
	return a.conn != nil
}

// Release closes the connection if one was opened. Only the first call has
// any effect.
func (a *Accessor) Release() error {
	if a.released {
		return nil
	}
	a.released = true
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	return err
}
