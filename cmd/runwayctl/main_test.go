// main_test.go
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

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/runway/data"
	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/logging"
	"github.com/localnerve/runway/internal/models"
	"github.com/localnerve/runway/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:runwayctl?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	store, err := storage.New(db, storage.WithSessionGC(0), storage.WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSeedMovesIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	moves, err := data.LoadReferenceMoves()
	require.NoError(t, err)

	created, updated, err := seedMoves(ctx, store, moves)
	require.NoError(t, err)
	assert.Equal(t, len(moves), created)
	assert.Zero(t, updated)

	created, updated, err = seedMoves(ctx, store, moves)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, len(moves), updated)

	all, err := store.GetAllReferenceMoves(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(moves))
}

func TestWriteTables(t *testing.T) {
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, writeSignups(&buf, []models.EarlyAccessSignup{
		{ID: 3, Email: "fan@example.com", Source: "landing", CreatedAt: at},
	}))
	assert.Contains(t, buf.String(), "EMAIL")
	assert.Contains(t, buf.String(), "fan@example.com")
	assert.Contains(t, buf.String(), "2026-04-01T08:00:00Z")

	buf.Reset()
	require.NoError(t, writeEmailRecords(&buf, []models.EmailRecord{
		{AttemptID: "a-1", Email: "fan@example.com", Status: models.EmailSkipped, SentAt: at},
	}))
	assert.Contains(t, buf.String(), "skipped")
}
