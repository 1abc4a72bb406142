// profile.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/runway/internal/storage"
	"github.com/localnerve/runway/internal/types"
	"github.com/localnerve/runway/internal/utils"
	"github.com/sirupsen/logrus"
)

// ProfileHandler handles the signed-in user's profile, gallery, and calibration
type ProfileHandler struct {
	Store *storage.Storage
	Log   *logrus.Logger
}

type profileRequest struct {
	Goal            *string                `json:"goal" validate:"omitempty,max=1024"`
	GoalDueDate     types.FlexTime         `json:"goalDueDate"`
	ProfileImageURL *string                `json:"profileImageUrl" validate:"omitempty,max=2048"`
	GalleryImages   types.FlexList[string] `json:"galleryImages" validate:"omitempty,dive,max=2048"`
}

func (r profileRequest) patch() storage.ProfilePatch {
	return storage.ProfilePatch{
		Goal:            r.Goal,
		GoalDueDate:     r.GoalDueDate.Ptr(),
		ProfileImageURL: r.ProfileImageURL,
		GalleryImages:   r.GalleryImages,
	}
}

type goalRequest struct {
	Goal        string         `json:"goal" validate:"required,max=1024"`
	GoalDueDate types.FlexTime `json:"goalDueDate"`
}

type galleryRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,max=2048"`
}

type galleryResponse struct {
	GalleryImages []string `json:"galleryImages"`
}

type trackingRequest struct {
	ShoulderWidthCalibration *float64 `json:"shoulderWidthCalibration" validate:"omitempty,gt=0"`
	DistanceCalibration      *float64 `json:"distanceCalibration" validate:"omitempty,gt=0"`
	storage.TrackingPatch
}

// GetProfile handles GET /api/profile
// @Summary Get the user's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.Store.GetUserProfile(c.UserContext(), sessionUser(c).ID)
	if err != nil {
		return storageFailure(c, h.Log, "getProfile", err)
	}
	if profile == nil {
		return utils.NotFoundResponse(c, "Profile not found")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// SaveProfile handles POST /api/profile
// @Summary Create or update the user's profile
// @Description Creates the profile on first call and patches it afterwards. galleryImages accepts a string or a list.
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body profileRequest true "Profile fields"
// @Success 200 {object} models.UserProfile
// @Success 201 {object} models.UserProfile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Router /profile [post]
func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	profile, created, err := h.Store.UpsertUserProfile(c.UserContext(), sessionUser(c).ID, req.patch())
	if err != nil {
		return storageFailure(c, h.Log, "saveProfile", err)
	}
	if created {
		return utils.SuccessResponse(c, profile, fiber.StatusCreated)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// SaveGoal handles POST /api/profile/goal
// @Summary Set the user's goal
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body goalRequest true "Goal"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Router /profile/goal [post]
func (h *ProfileHandler) SaveGoal(c *fiber.Ctx) error {
	var req goalRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	profile, err := h.Store.UpdateUserGoal(c.UserContext(), sessionUser(c).ID, req.Goal, req.GoalDueDate.Ptr())
	if err != nil {
		return storageFailure(c, h.Log, "saveGoal", err)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// AddGalleryImage handles POST /api/gallery
// @Summary Add a gallery image
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body galleryRequest true "Image"
// @Success 200 {object} galleryResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Router /gallery [post]
func (h *ProfileHandler) AddGalleryImage(c *fiber.Ctx) error {
	var req galleryRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	images, err := h.Store.AddGalleryImage(c.UserContext(), sessionUser(c).ID, req.ImageURL)
	if err != nil {
		return storageFailure(c, h.Log, "addGalleryImage", err)
	}
	return utils.SuccessResponse(c, galleryResponse{GalleryImages: images}, fiber.StatusOK)
}

// RemoveGalleryImage handles DELETE /api/gallery
// @Summary Remove a gallery image
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body galleryRequest true "Image"
// @Success 200 {object} galleryResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Router /gallery [delete]
func (h *ProfileHandler) RemoveGalleryImage(c *fiber.Ctx) error {
	var req galleryRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	images, err := h.Store.RemoveGalleryImage(c.UserContext(), sessionUser(c).ID, req.ImageURL)
	if err != nil {
		return storageFailure(c, h.Log, "removeGalleryImage", err)
	}
	return utils.SuccessResponse(c, galleryResponse{GalleryImages: images}, fiber.StatusOK)
}

// GetTrackingSettings handles GET /api/tracking-settings
// @Summary Get camera calibration
// @Tags Profile
// @Produce json
// @Success 200 {object} models.TrackingSettings
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tracking-settings [get]
func (h *ProfileHandler) GetTrackingSettings(c *fiber.Ctx) error {
	settings, err := h.Store.GetTrackingSettings(c.UserContext(), sessionUser(c).ID)
	if err != nil {
		return storageFailure(c, h.Log, "getTrackingSettings", err)
	}
	if settings == nil {
		return utils.NotFoundResponse(c, "Settings not found")
	}
	return utils.SuccessResponse(c, settings, fiber.StatusOK)
}

// SaveTrackingSettings handles POST /api/tracking-settings
// @Summary Create or update camera calibration
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body trackingRequest true "Calibration"
// @Success 200 {object} models.TrackingSettings
// @Success 201 {object} models.TrackingSettings
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Router /tracking-settings [post]
func (h *ProfileHandler) SaveTrackingSettings(c *fiber.Ctx) error {
	var req trackingRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}
	patch := req.TrackingPatch
	patch.ShoulderWidthCalibration = req.ShoulderWidthCalibration
	patch.DistanceCalibration = req.DistanceCalibration

	settings, created, err := h.Store.SaveTrackingSettings(c.UserContext(), sessionUser(c).ID, patch)
	if err != nil {
		return storageFailure(c, h.Log, "saveTrackingSettings", err)
	}
	if created {
		return utils.SuccessResponse(c, settings, fiber.StatusCreated)
	}
	return utils.SuccessResponse(c, settings, fiber.StatusOK)
}
