// session_store.go
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

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/localnerve/runway/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStore is a fiber.Storage over the sessions table.
// Expired rows read as absent and are removed by a periodic sweep.
type SessionStore struct {
	db   *gorm.DB
	log  *logrus.Logger
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewSessionStore creates the sessions table if needed and starts the sweep.
// A zero gcInterval disables the sweep.
func NewSessionStore(db *gorm.DB, gcInterval time.Duration, log *logrus.Logger) (*SessionStore, error) {
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		return nil, err
	}

	s := &SessionStore{db: db, log: log, done: make(chan struct{})}
	if gcInterval > 0 {
		s.wg.Add(1)
		go s.gc(gcInterval)
	}
	return s, nil
}

// Get returns the stored value, or nil when the key is absent or expired
func (s *SessionStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	row, err := takeOne[models.Session](s.db.Where("id = ?", key))
	if err != nil {
		return nil, wrap("sessionGet", err)
	}
	if row == nil || (row.ExpiresAt != nil && !row.ExpiresAt.After(time.Now())) {
		return nil, nil
	}
	return row.Data, nil
}

// Set stores val under key. A zero exp means the row never expires.
func (s *SessionStore) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	row := models.Session{ID: key, Data: val}
	if exp > 0 {
		at := time.Now().Add(exp).UTC()
		row.ExpiresAt = &at
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&row).Error
	return wrap("sessionSet", err)
}

// Delete removes key
func (s *SessionStore) Delete(key string) error {
	if key == "" {
		return nil
	}
	return wrap("sessionDelete", s.db.Where("id = ?", key).Delete(&models.Session{}).Error)
}

// Reset removes every session
func (s *SessionStore) Reset() error {
	return wrap("sessionReset", s.db.Where("1 = 1").Delete(&models.Session{}).Error)
}

// Close stops the sweep. The pool belongs to Storage and stays open.
func (s *SessionStore) Close() error {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
	return nil
}

// DeleteExpired removes every expired row and reports how many went
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now().UTC()).
		Delete(&models.Session{})
	return res.RowsAffected, wrap("sessionGC", res.Error)
}

func (s *SessionStore) gc(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(context.Background())
			if err != nil {
				s.log.WithError(err).Warn("Session sweep failed")
			} else if n > 0 {
				s.log.WithField("removed", n).Debug("Expired sessions removed")
			}
		}
	}
}
