// users.go
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
	"time"

	"github.com/localnerve/runway/internal/models"
	"gorm.io/gorm"
)

// GetUser returns the user with id, or nil
func (s *Storage) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := takeOne[models.User](s.conn(ctx).Where("id = ?", id))
	return user, wrap("getUser", err)
}

// GetUserByUsername returns the user with username, or nil
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := takeOne[models.User](s.conn(ctx).Where("username = ?", username))
	return user, wrap("getUserByUsername", err)
}

// CreateUser inserts a new user. A taken username fails with database.ErrConstraintViolation in the chain.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.RecordingsCount = 0
	if err := s.conn(ctx).Create(user).Error; err != nil {
		return nil, wrap("createUser", err)
	}
	return user, nil
}

// UpdateUserLastPractice stamps the user's last practice time, returning nil for an unknown user
func (s *Storage) UpdateUserLastPractice(ctx context.Context, userID uint64, at time.Time) (*models.User, error) {
	at = at.UTC()
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Update("last_practice_date", at)
	if res.Error != nil {
		return nil, wrap("updateUserLastPractice", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetUser(ctx, userID)
}

// IncrementRecordingsCount adds one to the user's counter and returns the new value
func (s *Storage) IncrementRecordingsCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		count, err = incrementRecordingsCount(tx, userID)
		return err
	})
	if err != nil {
		return 0, wrap("incrementRecordingsCount", err)
	}
	return count, nil
}

// incrementRecordingsCount runs the increment as one UPDATE so concurrent callers never lose a write,
// then reads the value back inside the same transaction.
func incrementRecordingsCount(tx *gorm.DB, userID uint64) (int64, error) {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("recordings_count", gorm.Expr("recordings_count + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}

	var count int64
	if err := tx.Model(&models.User{}).
		Select("recordings_count").
		Where("id = ?", userID).
		Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
