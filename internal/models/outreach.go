// outreach.go
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

import "time"

// EmailStatus is the lifecycle stage recorded for an outbound email attempt
type EmailStatus string

const (
	EmailRequested EmailStatus = "requested"
	EmailSent      EmailStatus = "sent"
	EmailSkipped   EmailStatus = "skipped"
	EmailFailed    EmailStatus = "failed"
	EmailError     EmailStatus = "error"
)

// EarlyAccessSignup is an append-only waitlist entry, unique by email
type EarlyAccessSignup struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	Source    string    `gorm:"size:64" json:"source"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// EmailRecord is one immutable audit row. Every stage of an attempt is its own row
// and the rows of one attempt share AttemptID.
type EmailRecord struct {
	ID           uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AttemptID    string      `gorm:"size:36;index" json:"attemptId"`
	Email        string      `gorm:"size:255;not null" json:"email"`
	Status       EmailStatus `gorm:"size:16;not null" json:"status"`
	Source       string      `gorm:"size:64" json:"source"`
	ResponseData JSON        `json:"responseData"`
	SentAt       time.Time   `gorm:"autoCreateTime;index" json:"sentAt"`
}

// Session is a server-side session row keyed by the cookie session id
type Session struct {
	ID        string     `gorm:"primaryKey;size:64"`
	Data      []byte     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"`
}

// TableName overrides the table name for EarlyAccessSignup
func (EarlyAccessSignup) TableName() string {
	return "early_access_signups"
}

// TableName overrides the table name for EmailRecord
func (EmailRecord) TableName() string {
	return "email_records"
}

// TableName overrides the table name for Session
func (Session) TableName() string {
	return "sessions"
}
