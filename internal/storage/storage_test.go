// storage_test.go
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
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/localnerve/runway/internal/config"
	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/logging"
	"github.com/localnerve/runway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testClock hands out strictly increasing timestamps so updatedAt comparisons are deterministic
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        clock.Now,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	s, err := New(db, WithSessionGC(0), WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s *Storage, username string) *models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), &models.User{Username: username, Password: "hash"})
	require.NoError(t, err)
	return user
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	createUser(t, s, "amara")
	_, err := s.CreateUser(ctx, &models.User{Username: "amara", Password: "other"})
	require.Error(t, err)

	var se *StorageError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "createUser", se.Op)
	assert.ErrorIs(t, err, database.ErrConstraintViolation)
}

func TestGetUserAbsentIsNotAnError(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	user, err := s.GetUser(ctx, 404)
	assert.NoError(t, err)
	assert.Nil(t, user)

	user, err = s.GetUserByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestIncrementRecordingsCountConcurrent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	user := createUser(t, s, "bea")

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementRecordingsCount(ctx, user.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reloaded, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, reloaded.RecordingsCount)
}

// TestConcurrentWritesFileDatabase runs the default SQLite setup with a connection pool,
// where read-then-write transactions contend for the write lock.
func TestConcurrentWritesFileDatabase(t *testing.T) {
	db, err := database.Connect(&config.Config{
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "runway.db"),
		DBConnectionLimit: 5,
	}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	s, err := New(db, WithSessionGC(0), WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	user := createUser(t, s, "dede")

	const n = 30
	var wg sync.WaitGroup
	errs := make(chan error, 3*n)
	for i := 0; i < n; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			if _, err := s.AddGalleryImage(ctx, user.ID, fmt.Sprintf("https://img.example.com/%d.jpg", i)); err != nil {
				errs <- fmt.Errorf("gallery: %w", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementRecordingsCount(ctx, user.ID); err != nil {
				errs <- fmt.Errorf("increment: %w", err)
			}
		}()
		go func(i int) {
			defer wg.Done()
			goal := fmt.Sprintf("goal %d", i)
			if _, _, err := s.UpsertUserProfile(ctx, user.ID, ProfilePatch{Goal: &goal}); err != nil {
				errs <- fmt.Errorf("upsert: %w", err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	profile, err := s.GetUserProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Len(t, profile.GalleryImages, n)

	reloaded, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, reloaded.RecordingsCount)

	var profiles int64
	require.NoError(t, db.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&profiles).Error)
	assert.EqualValues(t, 1, profiles)
}

func TestIncrementRecordingsCountUnknownUser(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.IncrementRecordingsCount(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSaveRecordingIncrementsOnce(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	user := createUser(t, s, "cleo")

	for i := 0; i < 3; i++ {
		_, err := s.SaveRecording(ctx, models.Recording{UserID: user.ID, FileURL: fmt.Sprintf("/v/%d.webm", i)})
		require.NoError(t, err)
	}

	reloaded, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, reloaded.RecordingsCount)

	recordings, err := s.GetRecordings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, recordings, 3)
	assert.Equal(t, "/v/2.webm", recordings[0].FileURL, "newest first")
}

func TestSaveRecordingUnknownUserRollsBack(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.SaveRecording(ctx, models.Recording{UserID: 777, FileURL: "/v/x.webm"})
	require.ErrorIs(t, err, ErrUserNotFound)

	recordings, err := s.GetRecordings(ctx, 777)
	require.NoError(t, err)
	assert.Empty(t, recordings)
}

func TestDeleteRecordingOwnership(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	owner := createUser(t, s, "dana")
	other := createUser(t, s, "eve")

	rec, err := s.SaveRecording(ctx, models.Recording{UserID: owner.ID, FileURL: "/v/a.webm"})
	require.NoError(t, err)

	deleted, err := s.DeleteRecording(ctx, rec.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	recordings, err := s.GetRecordings(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, recordings, 1)

	deleted, err = s.DeleteRecording(ctx, rec.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteRecording(ctx, rec.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCreateUserProfileTwiceKeepsOneRow(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	user := createUser(t, s, "fara")

	goal := "Miss Teen State"
	first, created, err := s.UpsertUserProfile(ctx, user.ID, ProfilePatch{Goal: &goal})
	require.NoError(t, err)
	assert.True(t, created)

	image := "/img/me.png"
	second, created, err := s.UpsertUserProfile(ctx, user.ID, ProfilePatch{ProfileImageURL: &image})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Goal)
	assert.Equal(t, goal, *second.Goal, "fields absent from the patch are untouched")
	assert.Equal(t, image, *second.ProfileImageURL)

	var count int64
	require.NoError(t, s.db.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateUserProfileCreatesWhenMissing(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	user := createUser(t, s, "gia")

	goal := "Top 10"
	profile, err := s.UpdateUserProfile(ctx, user.ID, ProfilePatch{Goal: &goal})
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.NotNil(t, profile.GalleryImages)
	assert.Empty(t, profile.GalleryImages)
}

func TestGalleryImagesNormalization(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "single string", body: `{"galleryImages":"/g/1.png"}`, want: []string{"/g/1.png"}},
		{name: "absent", body: `{}`, want: []string{}},
		{name: "array", body: `{"galleryImages":["/g/1.png","/g/2.png","/g/3.png"]}`, want: []string{"/g/1.png", "/g/2.png", "/g/3.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t)
			user := createUser(t, s, "hana")

			var patch ProfilePatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &patch))

			profile, err := s.CreateUserProfile(context.Background(), user.ID, patch)
			require.NoError(t, err)

			stored, err := s.GetUserProfile(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, []string(profile.GalleryImages))
			assert.Equal(t, tt.want, []string(stored.GalleryImages))
		})
	}
}

func TestGalleryAddRemove(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	user := createUser(t, s, "iris")

	removed, err := s.RemoveGalleryImage(ctx, user.ID, "/g/none.png")
	require.NoError(t, err)
	assert.Equal(t, []string{}, removed)

	images, err := s.AddGalleryImage(ctx, user.ID, "/g/1.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"/g/1.png"}, images)

	images, err = s.AddGalleryImage(ctx, user.ID, "/g/2.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"/g/1.png", "/g/2.png"}, images)

	images, err = s.RemoveGalleryImage(ctx, user.ID, "/g/1.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"/g/2.png"}, images)

	profile, err := s.GetUserProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/g/2.png"}, []string(profile.GalleryImages))
}

func TestUpdateUserGoal(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	user := createUser(t, s, "jo")

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	profile, err := s.UpdateUserGoal(ctx, user.ID, "Crown", &due)
	require.NoError(t, err)
	require.NotNil(t, profile.GoalDueDate)
	assert.True(t, due.Equal(*profile.GoalDueDate))

	profile, err = s.UpdateUserGoal(ctx, user.ID, "Crown again", nil)
	require.NoError(t, err)
	assert.Equal(t, "Crown again", *profile.Goal)
	assert.Nil(t, profile.GoalDueDate)

	stored, err := s.GetUserProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GoalDueDate)
}

func TestUpdateUserLastPractice(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	user := createUser(t, s, "kai")

	at := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	updated, err := s.UpdateUserLastPractice(ctx, user.ID, at)
	require.NoError(t, err)
	require.NotNil(t, updated.LastPracticeDate)
	assert.True(t, at.Equal(*updated.LastPracticeDate))

	missing, err := s.UpdateUserLastPractice(ctx, 4242, at)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveTrackingSettingsUpsert(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	user := createUser(t, s, "lena")

	width := 42.5
	settings, created, err := s.SaveTrackingSettings(ctx, user.ID, TrackingPatch{
		ShoulderWidthCalibration: &width,
		CameraSettings:           json.RawMessage(`{"facingMode":"user"}`),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{}, []string(settings.PreferredRoutines))

	distance := 1.8
	settings, created, err = s.SaveTrackingSettings(ctx, user.ID, TrackingPatch{DistanceCalibration: &distance})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, width, *settings.ShoulderWidthCalibration)
	assert.Equal(t, distance, *settings.DistanceCalibration)

	var camera map[string]string
	require.NoError(t, settings.CameraSettings.Decode(&camera))
	assert.Equal(t, "user", camera["facingMode"])

	missing, err := s.GetTrackingSettings(ctx, 31337)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveReferenceMoveUpsertByMoveID(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, created, err := s.SaveReferenceMove(ctx, models.ReferenceMove{
		MoveID:      7,
		Name:        "Pivot",
		Category:    "turns",
		ImageURL:    "/moves/pivot.png",
		JointAngles: datatypes.NewJSONType(map[string]float64{"leftKnee": 170}),
	})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.SaveReferenceMove(ctx, models.ReferenceMove{
		MoveID:   7,
		Name:     "Half Pivot",
		Category: "turns",
		ImageURL: "/moves/half-pivot.png",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Half Pivot", second.Name)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updatedAt must move forward")
	assert.Equal(t, 170.0, second.JointAngles.Data()["leftKnee"], "angles kept when none supplied")

	moves, err := s.GetAllReferenceMoves(ctx)
	require.NoError(t, err)
	assert.Len(t, moves, 1)

	missing, err := s.GetReferenceMove(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEarlyAccessDedup(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.SaveEarlyAccess(ctx, models.EarlyAccessSignup{Email: "q@example.com", Source: "landing"})
	require.NoError(t, err)

	existing, err := s.GetEarlyAccessByEmail(ctx, "q@example.com")
	require.NoError(t, err)
	require.NotNil(t, existing)

	_, err = s.SaveEarlyAccess(ctx, models.EarlyAccessSignup{Email: "q@example.com"})
	assert.ErrorIs(t, err, database.ErrConstraintViolation)

	signups, err := s.ListEarlyAccessSignups(ctx)
	require.NoError(t, err)
	assert.Len(t, signups, 1)
}

func TestEmailRecordsNewestFirst(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, status := range []models.EmailStatus{models.EmailRequested, models.EmailSkipped} {
		_, err := s.SaveEmailRecord(ctx, models.EmailRecord{AttemptID: "a1", Email: "r@example.com", Status: status})
		require.NoError(t, err)
	}

	records, err := s.GetEmailRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.EmailSkipped, records[0].Status)
	assert.Equal(t, models.EmailRequested, records[1].Status)
}

func TestUpcomingPageants(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	owner := createUser(t, s, "maya")
	other := createUser(t, s, "nia")

	later, err := s.SaveUpcomingPageant(ctx, models.UpcomingPageant{
		UserID: owner.ID, Name: "State", Location: "Austin", Date: time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = s.SaveUpcomingPageant(ctx, models.UpcomingPageant{
		UserID: owner.ID, Name: "County", Location: "Waco", Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	pageants, err := s.GetUpcomingPageants(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, pageants, 2)
	assert.Equal(t, "County", pageants[0].Name)

	deleted, err := s.DeleteUpcomingPageant(ctx, 99999, owner.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteUpcomingPageant(ctx, later.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	pageants, err = s.GetUpcomingPageants(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, pageants, 2)
}

func TestDriverFailureIsStorageError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset by peer"))

	s := &Storage{db: db, sessions: &SessionStore{db: db, done: make(chan struct{})}, log: logging.Discard()}
	_, err = s.GetUser(context.Background(), 1)
	require.Error(t, err)

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "getUser", se.Op)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.NotErrorIs(t, err, database.ErrConstraintViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
