// training.go
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

// Recording is a saved practice video owned by one user
type Recording struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"userId"`
	FileURL   string    `gorm:"size:2048;not null" json:"fileUrl"`
	Title     string    `gorm:"size:255" json:"title"`
	Notes     string    `gorm:"size:4096" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpcomingPageant is a competition on a user's calendar
type UpcomingPageant struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"not null;index:idx_pageant_user_date" json:"userId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Date        time.Time `gorm:"not null;index:idx_pageant_user_date" json:"date"`
	SpecialNote *string   `gorm:"size:1024" json:"specialNote"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ReferenceMove is a global catalogue pose, addressed by MoveID rather than ID
type ReferenceMove struct {
	ID          uint64                                  `gorm:"primaryKey;autoIncrement" json:"id"`
	MoveID      int64                                   `gorm:"not null;uniqueIndex" json:"moveId"`
	Name        string                                  `gorm:"size:255;not null" json:"name"`
	Category    string                                  `gorm:"size:255;not null" json:"category"`
	ImageURL    string                                  `gorm:"size:2048;not null" json:"imageUrl"`
	JointAngles datatypes.JSONType[map[string]float64] `json:"jointAngles"`
	CreatedAt   time.Time                               `json:"createdAt"`
	UpdatedAt   time.Time                               `json:"updatedAt"`
}

// TableName overrides the table name for Recording
func (Recording) TableName() string {
	return "recordings"
}

// TableName overrides the table name for UpcomingPageant
func (UpcomingPageant) TableName() string {
	return "upcoming_pageants"
}

// TableName overrides the table name for ReferenceMove
func (ReferenceMove) TableName() string {
	return "reference_moves"
}
