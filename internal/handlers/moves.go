// moves.go
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
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/runway/internal/models"
	"github.com/localnerve/runway/internal/storage"
	"github.com/localnerve/runway/internal/types"
	"github.com/localnerve/runway/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// MoveHandler handles the global reference-move catalogue
type MoveHandler struct {
	Store *storage.Storage
	Log   *logrus.Logger
}

type moveRequest struct {
	MoveID      types.FlexInt64    `json:"moveId"`
	Name        string             `json:"name" validate:"required,max=255"`
	Category    string             `json:"category" validate:"required,max=255"`
	ImageURL    string             `json:"imageUrl" validate:"required,max=2048"`
	JointAngles map[string]float64 `json:"jointAngles"`
}

// SaveReferenceMove handles POST /api/reference-moves
// @Summary Create or update a reference move
// @Description Upserts by moveId
// @Tags Moves
// @Accept json
// @Produce json
// @Param body body moveRequest true "Move"
// @Success 200 {object} models.ReferenceMove
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /reference-moves [post]
func (h *MoveHandler) SaveReferenceMove(c *fiber.Ctx) error {
	var req moveRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}
	if !req.MoveID.Set {
		return utils.ValidationErrorResponse(c, "moveId is required")
	}

	move := models.ReferenceMove{
		MoveID:   req.MoveID.Int64(),
		Name:     req.Name,
		Category: req.Category,
		ImageURL: req.ImageURL,
	}
	if len(req.JointAngles) > 0 {
		move.JointAngles = datatypes.NewJSONType(req.JointAngles)
	}

	saved, _, err := h.Store.SaveReferenceMove(c.UserContext(), move)
	if err != nil {
		return storageFailure(c, h.Log, "saveReferenceMove", err)
	}
	return utils.SuccessResponse(c, saved, fiber.StatusOK)
}

// GetReferenceMoves handles GET /api/reference-moves
// @Summary List the reference-move catalogue
// @Tags Moves
// @Produce json
// @Success 200 {array} models.ReferenceMove
// @Router /reference-moves [get]
func (h *MoveHandler) GetReferenceMoves(c *fiber.Ctx) error {
	moves, err := h.Store.GetAllReferenceMoves(c.UserContext())
	if err != nil {
		return storageFailure(c, h.Log, "getReferenceMoves", err)
	}
	return utils.SuccessResponse(c, moves, fiber.StatusOK)
}

// GetReferenceMove handles GET /api/reference-moves/:moveId
// @Summary Get one reference move
// @Tags Moves
// @Produce json
// @Param moveId path int true "Move ID"
// @Success 200 {object} models.ReferenceMove
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /reference-moves/{moveId} [get]
func (h *MoveHandler) GetReferenceMove(c *fiber.Ctx) error {
	moveID, err := strconv.ParseInt(c.Params("moveId"), 10, 64)
	if err != nil {
		return utils.ValidationErrorResponse(c, "Invalid move ID")
	}

	move, err := h.Store.GetReferenceMove(c.UserContext(), moveID)
	if err != nil {
		return storageFailure(c, h.Log, "getReferenceMove", err)
	}
	if move == nil {
		return utils.NotFoundResponse(c, "Reference move not found")
	}
	return utils.SuccessResponse(c, move, fiber.StatusOK)
}
