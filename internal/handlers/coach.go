// coach.go
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
	"github.com/localnerve/runway/internal/services"
	"github.com/localnerve/runway/internal/utils"
	"github.com/sirupsen/logrus"
)

// CoachHandler handles the AI coaching routes
type CoachHandler struct {
	Coach services.Coach
	Log   *logrus.Logger
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /api/ai-chat
// @Summary Ask the AI pageant coach
// @Tags Coach
// @Accept json
// @Produce json
// @Param body body chatRequest true "Question"
// @Success 200 {object} chatResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /ai-chat [post]
func (h *CoachHandler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, "Message is required")
	}

	reply, err := h.Coach.Chat(c.UserContext(), req.Message)
	if err != nil {
		h.Log.WithError(err).Error("AI chat failed")
		return utils.ErrorResponse(c, "Failed to get AI response", fiber.StatusInternalServerError, utils.ErrorTypeUpstream)
	}
	return utils.SuccessResponse(c, chatResponse{Response: reply}, fiber.StatusOK)
}

// AnalyzeResponse handles POST /api/analyze-response
// @Summary Grade an interview answer
// @Tags Coach
// @Accept json
// @Produce json
// @Param body body services.AnalyzeRequest true "Answer"
// @Success 200 {object} services.Feedback
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /analyze-response [post]
func (h *CoachHandler) AnalyzeResponse(c *fiber.Ctx) error {
	var req services.AnalyzeRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, "Question and response are required")
	}

	feedback, err := h.Coach.Analyze(c.UserContext(), req)
	if err != nil {
		h.Log.WithError(err).WithField("user_id", sessionUser(c).ID).Error("Response analysis failed")
		return utils.ErrorResponse(c, "Failed to analyze response", fiber.StatusInternalServerError, utils.ErrorTypeUpstream)
	}
	return utils.SuccessResponse(c, feedback, fiber.StatusOK)
}
