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

package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/runway/internal/models"
	"github.com/localnerve/runway/internal/storage"
	"github.com/localnerve/runway/internal/types"
	"github.com/localnerve/runway/internal/utils"
	"github.com/sirupsen/logrus"
)

const untitledRecording = "Untitled Recording"

// TrainingHandler handles recordings, practice stamps, and the pageant calendar
type TrainingHandler struct {
	Store *storage.Storage
	Log   *logrus.Logger
	Now   func() time.Time
}

type recordingRequest struct {
	FileURL string `json:"fileUrl" validate:"required,max=2048"`
	Title   string `json:"title" validate:"max=255"`
	Notes   string `json:"notes" validate:"max=4096"`
}

type pageantRequest struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Location    string         `json:"location" validate:"required,max=255"`
	Date        types.FlexTime `json:"date"`
	SpecialNote *string        `json:"specialNote" validate:"omitempty,max=1024"`
}

func (h *TrainingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// GetRecordings handles GET /api/recordings
// @Summary List the user's recordings
// @Tags Training
// @Produce json
// @Success 200 {array} models.Recording
// @Failure 401 {string} string "Unauthorized"
// @Router /recordings [get]
func (h *TrainingHandler) GetRecordings(c *fiber.Ctx) error {
	recordings, err := h.Store.GetRecordings(c.UserContext(), sessionUser(c).ID)
	if err != nil {
		return storageFailure(c, h.Log, "getRecordings", err)
	}
	return utils.SuccessResponse(c, recordings, fiber.StatusOK)
}

// SaveRecording handles POST /api/recordings
// @Summary Save a recording
// @Description Stores the recording and increments the user's recording count
// @Tags Training
// @Accept json
// @Produce json
// @Param body body recordingRequest true "Recording"
// @Success 201 {object} models.Recording
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Router /recordings [post]
func (h *TrainingHandler) SaveRecording(c *fiber.Ctx) error {
	var req recordingRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = untitledRecording
	}
	rec, err := h.Store.SaveRecording(c.UserContext(), models.Recording{
		UserID:  sessionUser(c).ID,
		FileURL: req.FileURL,
		Title:   title,
		Notes:   req.Notes,
	})
	if err != nil {
		return storageFailure(c, h.Log, "saveRecording", err)
	}
	return utils.SuccessResponse(c, rec, fiber.StatusCreated)
}

// DeleteRecording handles DELETE /api/recordings/:id
// @Summary Delete one of the user's recordings
// @Tags Training
// @Produce json
// @Param id path int true "Recording ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recordings/{id} [delete]
func (h *TrainingHandler) DeleteRecording(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ValidationErrorResponse(c, "Invalid recording ID")
	}

	deleted, err := h.Store.DeleteRecording(c.UserContext(), id, sessionUser(c).ID)
	if err != nil {
		return storageFailure(c, h.Log, "deleteRecording", err)
	}
	if !deleted {
		return utils.NotFoundResponse(c, "Recording not found or you don't have permission to delete it")
	}
	return utils.MessageResponse(c, "Recording deleted successfully", fiber.StatusOK)
}

// RecordPractice handles POST /api/practice
// @Summary Stamp today's practice
// @Tags Training
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {string} string "Unauthorized"
// @Router /practice [post]
func (h *TrainingHandler) RecordPractice(c *fiber.Ctx) error {
	user, err := h.Store.UpdateUserLastPractice(c.UserContext(), sessionUser(c).ID, h.now())
	if err != nil {
		return storageFailure(c, h.Log, "recordPractice", err)
	}
	if user == nil {
		return utils.NotFoundResponse(c, "User not found")
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// GetPageants handles GET /api/pageants
// @Summary List upcoming pageants
// @Tags Training
// @Produce json
// @Success 200 {array} models.UpcomingPageant
// @Failure 401 {string} string "Unauthorized"
// @Router /pageants [get]
func (h *TrainingHandler) GetPageants(c *fiber.Ctx) error {
	pageants, err := h.Store.GetUpcomingPageants(c.UserContext(), sessionUser(c).ID)
	if err != nil {
		return storageFailure(c, h.Log, "getPageants", err)
	}
	return utils.SuccessResponse(c, pageants, fiber.StatusOK)
}

// SavePageant handles POST /api/pageants
// @Summary Add an upcoming pageant
// @Tags Training
// @Accept json
// @Produce json
// @Param body body pageantRequest true "Pageant"
// @Success 201 {object} models.UpcomingPageant
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Router /pageants [post]
func (h *TrainingHandler) SavePageant(c *fiber.Ctx) error {
	var req pageantRequest
	if err := bindBody(c, &req); err != nil {
		if errors.Is(err, types.ErrInvalidDate) {
			return utils.ValidationErrorResponse(c, "Invalid date")
		}
		return utils.ValidationErrorResponse(c, err.Error())
	}
	if !req.Date.Set {
		return utils.ValidationErrorResponse(c, "Invalid date")
	}

	pageant, err := h.Store.SaveUpcomingPageant(c.UserContext(), models.UpcomingPageant{
		UserID:      sessionUser(c).ID,
		Name:        req.Name,
		Location:    req.Location,
		Date:        req.Date.Time,
		SpecialNote: req.SpecialNote,
	})
	if err != nil {
		return storageFailure(c, h.Log, "savePageant", err)
	}
	return utils.SuccessResponse(c, pageant, fiber.StatusCreated)
}

// DeletePageant handles DELETE /api/pageants/:id
// @Summary Delete one of the user's pageants
// @Tags Training
// @Produce json
// @Param id path int true "Pageant ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /pageants/{id} [delete]
func (h *TrainingHandler) DeletePageant(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ValidationErrorResponse(c, "Invalid pageant ID")
	}

	deleted, err := h.Store.DeleteUpcomingPageant(c.UserContext(), id, sessionUser(c).ID)
	if err != nil {
		return storageFailure(c, h.Log, "deletePageant", err)
	}
	if !deleted {
		return utils.NotFoundResponse(c, "Pageant not found")
	}
	return utils.MessageResponse(c, "Pageant deleted successfully", fiber.StatusOK)
}
