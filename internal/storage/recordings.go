// recordings.go
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

	"github.com/localnerve/runway/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// GetRecordings returns every recording owned by userID, newest first
func (s *Storage) GetRecordings(ctx context.Context, userID uint64) ([]models.Recording, error) {
	recordings := []models.Recording{}
	err := s.conn(ctx).
		Clauses(hints.CommentBefore("select", "runway:getRecordings")).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recordings).Error
	if err != nil {
		return nil, wrap("getRecordings", err)
	}
	return recordings, nil
}

// SaveRecording inserts the recording and increments the owner's counter in one transaction.
// This is the only place the save path increments the counter.
func (s *Storage) SaveRecording(ctx context.Context, rec models.Recording) (*models.Recording, error) {
	rec.ID = 0
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		_, err := incrementRecordingsCount(tx, rec.UserID)
		return err
	})
	if err != nil {
		return nil, wrap("saveRecording", err)
	}
	return &rec, nil
}

// DeleteRecording removes the recording only if userID owns it.
// false covers both a missing row and a row owned by someone else.
func (s *Storage) DeleteRecording(ctx context.Context, id, userID uint64) (bool, error) {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Recording{})
	if res.Error != nil {
		return false, wrap("deleteRecording", res.Error)
	}
	return res.RowsAffected > 0, nil
}
