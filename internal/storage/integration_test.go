//go:build integration

// integration_test.go
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
	"os"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/devdb"
	"github.com/localnerve/runway/internal/logging"
	"github.com/localnerve/runway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	mariadb, err := devdb.StartMariaDB(ctx, os.Getenv("DB_IMAGE"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mariadb.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	})

	db, err := database.Connect(mariadb.Config(), logging.Discard())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	s, err := New(db, WithSessionGC(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	user, err := s.CreateUser(ctx, &models.User{Username: "integration", Password: "hash"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, &models.User{Username: "integration", Password: "hash"})
	assert.ErrorIs(t, err, database.ErrConstraintViolation)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SaveRecording(ctx, models.Recording{UserID: user.ID, FileURL: "/v/race.webm"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	reloaded, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, reloaded.RecordingsCount)

	var wgProfile sync.WaitGroup
	for i := 0; i < 5; i++ {
		wgProfile.Add(1)
		go func() {
			defer wgProfile.Done()
			_, _, err := s.UpsertUserProfile(ctx, user.ID, ProfilePatch{})
			assert.NoError(t, err)
		}()
	}
	wgProfile.Wait()

	var count int64
	require.NoError(t, db.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	store := s.SessionStore()
	require.NoError(t, store.Set("integration-sid", []byte("data"), 0))
	val, err := store.Get("integration-sid")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), val)
}

func TestWithRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	store, err := NewRedisSessionStore(ctx, endpoint, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	got, err := store.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Set("sid-1", []byte("payload"), time.Minute))
	require.NoError(t, store.Set("sid-2", []byte("other"), time.Minute))
	got, err = store.Get("sid-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	require.NoError(t, store.Delete("sid-1"))
	got, err = store.Get("sid-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Reset())
	got, err = store.Get("sid-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}
