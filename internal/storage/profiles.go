// profiles.go
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
	"github.com/localnerve/runway/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProfilePatch is a partial profile. Nil fields are left untouched on update.
// GalleryImages accepts a single URL or a list; nil means "not provided".
type ProfilePatch struct {
	Goal            *string                `json:"goal"`
	GoalDueDate     *time.Time             `json:"goalDueDate"`
	ProfileImageURL *string                `json:"profileImageUrl"`
	GalleryImages   types.FlexList[string] `json:"galleryImages"`
}

func (p ProfilePatch) updates() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Goal != nil {
		cols["goal"] = *p.Goal
	}
	if p.GoalDueDate != nil {
		cols["goal_due_date"] = p.GoalDueDate.UTC()
	}
	if p.ProfileImageURL != nil {
		cols["profile_image_url"] = *p.ProfileImageURL
	}
	if p.GalleryImages != nil {
		cols["gallery_images"] = datatypes.JSONSlice[string](p.GalleryImages.Slice())
	}
	return cols
}

// GetUserProfile returns the user's profile, or nil
func (s *Storage) GetUserProfile(ctx context.Context, userID uint64) (*models.UserProfile, error) {
	profile, err := takeOne[models.UserProfile](s.conn(ctx).Where("user_id = ?", userID))
	return profile, wrap("getUserProfile", err)
}

// UpsertUserProfile ensures the user's single profile row exists and applies patch to it.
// created reports whether the row was inserted by this call.
func (s *Storage) UpsertUserProfile(ctx context.Context, userID uint64, patch ProfilePatch) (*models.UserProfile, bool, error) {
	var (
		profile *models.UserProfile
		created bool
	)
	run := func() error {
		return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			profile, created, err = upsertProfile(tx, userID, patch)
			return err
		})
	}

	err := retryConflict(run)
	if err != nil {
		return nil, false, wrap("upsertUserProfile", err)
	}
	return profile, created, nil
}

// CreateUserProfile creates the profile, or updates it when one already exists
func (s *Storage) CreateUserProfile(ctx context.Context, userID uint64, patch ProfilePatch) (*models.UserProfile, error) {
	profile, _, err := s.UpsertUserProfile(ctx, userID, patch)
	return profile, err
}

// UpdateUserProfile updates the profile, or creates it when none exists
func (s *Storage) UpdateUserProfile(ctx context.Context, userID uint64, patch ProfilePatch) (*models.UserProfile, error) {
	profile, _, err := s.UpsertUserProfile(ctx, userID, patch)
	return profile, err
}

// UpdateUserGoal sets the goal and its due date. A nil due date clears it.
func (s *Storage) UpdateUserGoal(ctx context.Context, userID uint64, goal string, dueDate *time.Time) (*models.UserProfile, error) {
	var profile *models.UserProfile
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		profile, _, err = upsertProfile(tx, userID, ProfilePatch{Goal: &goal, GoalDueDate: dueDate})
		if err != nil || dueDate != nil {
			return err
		}
		if err := tx.Model(profile).Update("goal_due_date", nil).Error; err != nil {
			return err
		}
		profile.GoalDueDate = nil
		return nil
	})
	if err != nil {
		return nil, wrap("updateUserGoal", err)
	}
	return profile, nil
}

// AddGalleryImage appends imageURL to the gallery and returns the whole gallery
func (s *Storage) AddGalleryImage(ctx context.Context, userID uint64, imageURL string) ([]string, error) {
	var images []string
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := takeOne[models.UserProfile](forUpdate(tx).Where("user_id = ?", userID))
		if err != nil {
			return err
		}
		if profile == nil {
			created, _, err := upsertProfile(tx, userID, ProfilePatch{GalleryImages: types.FlexList[string]{imageURL}})
			if err != nil {
				return err
			}
			images = created.GalleryImages
			return nil
		}

		images = append(append([]string{}, profile.GalleryImages...), imageURL)
		return tx.Model(profile).Update("gallery_images", datatypes.JSONSlice[string](images)).Error
	})
	if err != nil {
		return nil, wrap("addGalleryImage", err)
	}
	return nonNil(images), nil
}

// RemoveGalleryImage drops every occurrence of imageURL and returns the whole gallery
func (s *Storage) RemoveGalleryImage(ctx context.Context, userID uint64, imageURL string) ([]string, error) {
	images := []string{}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := takeOne[models.UserProfile](forUpdate(tx).Where("user_id = ?", userID))
		if err != nil || profile == nil || len(profile.GalleryImages) == 0 {
			return err
		}

		for _, img := range profile.GalleryImages {
			if img != imageURL {
				images = append(images, img)
			}
		}
		return tx.Model(profile).Update("gallery_images", datatypes.JSONSlice[string](images)).Error
	})
	if err != nil {
		return nil, wrap("removeGalleryImage", err)
	}
	return images, nil
}

func upsertProfile(tx *gorm.DB, userID uint64, patch ProfilePatch) (*models.UserProfile, bool, error) {
	existing, err := takeOne[models.UserProfile](forUpdate(tx).Where("user_id = ?", userID))
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		profile := &models.UserProfile{
			UserID:          userID,
			Goal:            patch.Goal,
			ProfileImageURL: patch.ProfileImageURL,
			GalleryImages:   patch.GalleryImages.Slice(),
		}
		if patch.GoalDueDate != nil {
			due := patch.GoalDueDate.UTC()
			profile.GoalDueDate = &due
		}
		if err := tx.Create(profile).Error; err != nil {
			return nil, false, err
		}
		return profile, true, nil
	}

	if cols := patch.updates(); len(cols) > 0 {
		if err := tx.Model(existing).Updates(cols).Error; err != nil {
			return nil, false, err
		}
	}
	profile, err := takeOne[models.UserProfile](tx.Where("id = ?", existing.ID))
	return profile, false, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
