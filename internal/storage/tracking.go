// tracking.go
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

	"github.com/localnerve/runway/internal/models"
	"github.com/localnerve/runway/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrackingPatch is a partial set of calibration values. Nil fields are left untouched.
type TrackingPatch struct {
	ShoulderWidthCalibration *float64               `json:"shoulderWidthCalibration"`
	DistanceCalibration      *float64               `json:"distanceCalibration"`
	CameraSettings           json.RawMessage        `json:"cameraSettings"`
	PreferredRoutines        types.FlexList[string] `json:"preferredRoutines"`
}

func (p TrackingPatch) hasCameraSettings() bool {
	return len(p.CameraSettings) > 0 && string(p.CameraSettings) != "null"
}

func (p TrackingPatch) updates() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.ShoulderWidthCalibration != nil {
		cols["shoulder_width_calibration"] = *p.ShoulderWidthCalibration
	}
	if p.DistanceCalibration != nil {
		cols["distance_calibration"] = *p.DistanceCalibration
	}
	if p.hasCameraSettings() {
		cols["camera_settings"] = models.JSON{JSON: datatypes.JSON(p.CameraSettings)}
	}
	if p.PreferredRoutines != nil {
		cols["preferred_routines"] = datatypes.JSONSlice[string](p.PreferredRoutines.Slice())
	}
	return cols
}

// GetTrackingSettings returns the user's settings, or nil
func (s *Storage) GetTrackingSettings(ctx context.Context, userID uint64) (*models.TrackingSettings, error) {
	settings, err := takeOne[models.TrackingSettings](s.conn(ctx).Where("user_id = ?", userID))
	return settings, wrap("getTrackingSettings", err)
}

// SaveTrackingSettings ensures the user's settings row exists and applies patch to it
func (s *Storage) SaveTrackingSettings(ctx context.Context, userID uint64, patch TrackingPatch) (*models.TrackingSettings, bool, error) {
	var (
		settings *models.TrackingSettings
		created  bool
	)
	run := func() error {
		return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			settings, created, err = upsertTracking(tx, userID, patch)
			return err
		})
	}

	err := retryConflict(run)
	if err != nil {
		return nil, false, wrap("saveTrackingSettings", err)
	}
	return settings, created, nil
}

func upsertTracking(tx *gorm.DB, userID uint64, patch TrackingPatch) (*models.TrackingSettings, bool, error) {
	existing, err := takeOne[models.TrackingSettings](forUpdate(tx).Where("user_id = ?", userID))
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		settings := &models.TrackingSettings{
			UserID:                   userID,
			ShoulderWidthCalibration: patch.ShoulderWidthCalibration,
			DistanceCalibration:      patch.DistanceCalibration,
			PreferredRoutines:        patch.PreferredRoutines.Slice(),
		}
		if patch.hasCameraSettings() {
			settings.CameraSettings = models.JSON{JSON: datatypes.JSON(patch.CameraSettings)}
		}
		if err := tx.Create(settings).Error; err != nil {
			return nil, false, err
		}
		return settings, true, nil
	}

	if cols := patch.updates(); len(cols) > 0 {
		if err := tx.Model(existing).Updates(cols).Error; err != nil {
			return nil, false, err
		}
	}
	settings, err := takeOne[models.TrackingSettings](tx.Where("id = ?", existing.ID))
	return settings, false, err
}
