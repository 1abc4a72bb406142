// user.go
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

package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is an account holder. Password holds the encoded hash and never leaves the server.
type User struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string     `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Password         string     `gorm:"size:255;not null" json:"-"`
	Email            string     `gorm:"size:255" json:"email"`
	LastPracticeDate *time.Time `json:"lastPracticeDate"`
	RecordingsCount  int64      `gorm:"not null;default:0" json:"recordingsCount"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// UserProfile is the one-per-user goal and gallery record
type UserProfile struct {
	ID              uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint64                      `gorm:"not null;uniqueIndex" json:"userId"`
	Goal            *string                     `gorm:"size:1024" json:"goal"`
	GoalDueDate     *time.Time                  `json:"goalDueDate"`
	ProfileImageURL *string                     `gorm:"size:2048" json:"profileImageUrl"`
	GalleryImages   datatypes.JSONSlice[string] `json:"galleryImages"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// TrackingSettings holds per-user camera calibration
type TrackingSettings struct {
	ID                       uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                   uint64                      `gorm:"not null;uniqueIndex" json:"userId"`
	ShoulderWidthCalibration *float64                    `json:"shoulderWidthCalibration"`
	DistanceCalibration      *float64                    `json:"distanceCalibration"`
	CameraSettings           JSON                        `json:"cameraSettings"`
	PreferredRoutines        datatypes.JSONSlice[string] `json:"preferredRoutines"`
	CreatedAt                time.Time                   `json:"createdAt"`
	UpdatedAt                time.Time                   `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for UserProfile
func (UserProfile) TableName() string {
	return "user_profiles"
}

// TableName overrides the table name for TrackingSettings
func (TrackingSettings) TableName() string {
	return "tracking_settings"
}
