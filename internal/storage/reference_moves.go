// reference_moves.go
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

// GetReferenceMove returns the catalogue entry for moveID, or nil
func (s *Storage) GetReferenceMove(ctx context.Context, moveID int64) (*models.ReferenceMove, error) {
	move, err := takeOne[models.ReferenceMove](s.conn(ctx).Where("move_id = ?", moveID))
	return move, wrap("getReferenceMove", err)
}

// GetAllReferenceMoves returns the whole catalogue ordered by moveId
func (s *Storage) GetAllReferenceMoves(ctx context.Context) ([]models.ReferenceMove, error) {
	moves := []models.ReferenceMove{}
	err := s.conn(ctx).
		Clauses(hints.CommentBefore("select", "runway:getAllReferenceMoves")).
		Order("move_id ASC").
		Find(&moves).Error
	if err != nil {
		return nil, wrap("getAllReferenceMoves", err)
	}
	return moves, nil
}

// SaveReferenceMove inserts the move, or updates the row that already carries its MoveID.
// Joint angles are only replaced when the incoming move has some.
func (s *Storage) SaveReferenceMove(ctx context.Context, move models.ReferenceMove) (*models.ReferenceMove, bool, error) {
	var (
		saved   *models.ReferenceMove
		created bool
	)
	run := func() error {
		return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			saved, created, err = upsertMove(tx, move)
			return err
		})
	}

	err := retryConflict(run)
	if err != nil {
		return nil, false, wrap("saveReferenceMove", err)
	}
	return saved, created, nil
}

func upsertMove(tx *gorm.DB, move models.ReferenceMove) (*models.ReferenceMove, bool, error) {
	existing, err := takeOne[models.ReferenceMove](forUpdate(tx).Where("move_id = ?", move.MoveID))
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		move.ID = 0
		if err := tx.Create(&move).Error; err != nil {
			return nil, false, err
		}
		return &move, true, nil
	}

	cols := map[string]interface{}{
		"name":       move.Name,
		"category":   move.Category,
		"image_url":  move.ImageURL,
		"updated_at": tx.NowFunc(),
	}
	if len(move.JointAngles.Data()) > 0 {
		cols["joint_angles"] = move.JointAngles
	}
	if err := tx.Model(existing).Updates(cols).Error; err != nil {
		return nil, false, err
	}
	saved, err := takeOne[models.ReferenceMove](tx.Where("id = ?", existing.ID))
	return saved, false, err
}
