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

package storage

import (
	"context"

	"github.com/localnerve/runway/internal/models"
)

// GetEarlyAccessByEmail returns the signup for email, or nil
func (s *Storage) GetEarlyAccessByEmail(ctx context.Context, email string) (*models.EarlyAccessSignup, error) {
	signup, err := takeOne[models.EarlyAccessSignup](s.conn(ctx).Where("email = ?", email))
	return signup, wrap("getEarlyAccessByEmail", err)
}

// SaveEarlyAccess appends a signup. Callers check for an existing email first;
// a concurrent duplicate surfaces as a constraint violation.
func (s *Storage) SaveEarlyAccess(ctx context.Context, signup models.EarlyAccessSignup) (*models.EarlyAccessSignup, error) {
	signup.ID = 0
	if err := s.conn(ctx).Create(&signup).Error; err != nil {
		return nil, wrap("saveEarlyAccess", err)
	}
	return &signup, nil
}

// ListEarlyAccessSignups returns every signup, oldest first
func (s *Storage) ListEarlyAccessSignups(ctx context.Context) ([]models.EarlyAccessSignup, error) {
	signups := []models.EarlyAccessSignup{}
	if err := s.conn(ctx).Order("created_at ASC").Order("id ASC").Find(&signups).Error; err != nil {
		return nil, wrap("listEarlyAccessSignups", err)
	}
	return signups, nil
}

// SaveEmailRecord appends one audit row. Records are never updated.
func (s *Storage) SaveEmailRecord(ctx context.Context, rec models.EmailRecord) (*models.EmailRecord, error) {
	rec.ID = 0
	if err := s.conn(ctx).Create(&rec).Error; err != nil {
		return nil, wrap("saveEmailRecord", err)
	}
	return &rec, nil
}

// GetEmailRecords returns every audit row, newest first
func (s *Storage) GetEmailRecords(ctx context.Context) ([]models.EmailRecord, error) {
	records := []models.EmailRecord{}
	if err := s.conn(ctx).Order("sent_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, wrap("getEmailRecords", err)
	}
	return records, nil
}
