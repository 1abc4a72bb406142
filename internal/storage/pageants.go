// pageants.go
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
	"gorm.io/hints"
)

// GetUpcomingPageants lists the user's pageants by date, soonest first
func (s *Storage) GetUpcomingPageants(ctx context.Context, userID uint64) ([]models.UpcomingPageant, error) {
	pageants := []models.UpcomingPageant{}
	err := s.conn(ctx).
		Clauses(hints.CommentBefore("select", "runway:getUpcomingPageants")).
		Where("user_id = ?", userID).
		Order("date ASC").
		Order("id ASC").
		Find(&pageants).Error
	if err != nil {
		return nil, wrap("getUpcomingPageants", err)
	}
	return pageants, nil
}

// SaveUpcomingPageant inserts a pageant for its UserID
func (s *Storage) SaveUpcomingPageant(ctx context.Context, p models.UpcomingPageant) (*models.UpcomingPageant, error) {
	p.ID = 0
	p.Date = p.Date.UTC()
	if err := s.conn(ctx).Create(&p).Error; err != nil {
		return nil, wrap("saveUpcomingPageant", err)
	}
	return &p, nil
}

// DeleteUpcomingPageant removes the pageant only if userID owns it
func (s *Storage) DeleteUpcomingPageant(ctx context.Context, id, userID uint64) (bool, error) {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.UpcomingPageant{})
	if res.Error != nil {
		return false, wrap("deleteUpcomingPageant", res.Error)
	}
	return res.RowsAffected > 0, nil
}
