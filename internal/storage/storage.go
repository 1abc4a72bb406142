// storage.go
//
// Session-authenticated data service for the Runway AI pageant training application
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of runway.
// runway is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// runway is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with runway.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package storage is the only component that talks to the relational store.
// Every exported method is scoped by context, returns absent results as nil
// (never an error), and wraps driver failures in *StorageError.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/logging"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUserNotFound is returned by mutations that address a user row that does not exist
var ErrUserNotFound = errors.New("user not found")

// StorageError wraps a failure of the underlying driver with the operation that hit it
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	if database.IsUniqueViolation(err) && !errors.Is(err, database.ErrConstraintViolation) {
		err = fmt.Errorf("%w: %w", database.ErrConstraintViolation, err)
	}
	return &StorageError{Op: op, Err: err}
}

// Storage is the typed data-access layer. It owns the connection pool and the session store.
type Storage struct {
	db       *gorm.DB
	sessions fiber.Storage
	log      *logrus.Logger
}

type options struct {
	log       *logrus.Logger
	sessionGC time.Duration
	sessions  fiber.Storage
}

// Option configures New
type Option func(*options)

// WithLogger sets the logger used for background work
func WithLogger(log *logrus.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithSessionGC sets how often expired session rows are pruned. Zero disables the sweep.
func WithSessionGC(interval time.Duration) Option {
	return func(o *options) { o.sessionGC = interval }
}

// WithSessionStorage replaces the database-backed session store (for example with Redis)
func WithSessionStorage(sessions fiber.Storage) Option {
	return func(o *options) { o.sessions = sessions }
}

// New creates the storage layer over an open pool.
// Unless another session storage is supplied, the sessions table is created here.
func New(db *gorm.DB, opts ...Option) (*Storage, error) {
	o := options{sessionGC: 10 * time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Discard()
	}

	sessions := o.sessions
	if sessions == nil {
		store, err := NewSessionStore(db, o.sessionGC, o.log)
		if err != nil {
			return nil, wrap("sessionStore", err)
		}
		sessions = store
	}

	return &Storage{db: db, sessions: sessions, log: o.log}, nil
}

// SessionStore returns the storage backing server-side sessions
func (s *Storage) SessionStore() fiber.Storage {
	return s.sessions
}

// Ping checks that the pool can reach the database
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("ping", err)
	}
	return wrap("ping", sqlDB.PingContext(ctx))
}

// Close stops the session store and releases the pool
func (s *Storage) Close() error {
	sessErr := s.sessions.Close()
	dbErr := database.Close(s.db)
	return errors.Join(sessErr, dbErr)
}

func (s *Storage) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// takeOne loads the first row matching query into a new T, or nil if there is none
func takeOne[T any](query *gorm.DB) (*T, error) {
	var row T
	err := query.Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// upsertAttempts bounds how often an upsert is re-run after losing an insert race
const upsertAttempts = 3

// retryConflict re-runs an upsert transaction that lost a race to a concurrent insert.
// The rerun finds the committed row and takes the update path.
func retryConflict(run func() error) error {
	var err error
	for i := 0; i < upsertAttempts; i++ {
		err = run()
		if !database.IsUniqueViolation(err) && !database.IsDeadlock(err) {
			return err
		}
	}
	return err
}

// forUpdate locks the selected row on dialects with row-level locking
func forUpdate(tx *gorm.DB) *gorm.DB {
	switch tx.Dialector.Name() {
	case "mysql", "postgres":
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
