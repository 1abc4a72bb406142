// auth.go
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

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/runway/internal/services"
	"github.com/localnerve/runway/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles account and session routes
type AuthHandler struct {
	Auth *services.AuthService
	Log  *logrus.Logger
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/register
// @Summary Register a new account
// @Description Creates the account and starts an authenticated session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.Registration true "Account"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var reg services.Registration
	if err := bindBody(c, &reg); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	user, err := h.Auth.Register(c, reg)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return utils.ValidationErrorResponse(c, "Username already exists")
		}
		return storageFailure(c, h.Log, "register", err)
	}
	return utils.SuccessResponse(c, user, fiber.StatusCreated)
}

// Login handles POST /api/login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	user, err := h.Auth.Login(c, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.ErrorResponse(c, "Invalid username or password", fiber.StatusUnauthorized, utils.ErrorTypeAuth)
		}
		return storageFailure(c, h.Log, "login", err)
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// Logout handles POST /api/logout
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.MessageResponseStruct
// @Router /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c); err != nil {
		return storageFailure(c, h.Log, "logout", err)
	}
	return utils.MessageResponse(c, "Logged out", fiber.StatusOK)
}

// CurrentUser handles GET /api/user
// @Summary Get the signed-in user
// @Tags Auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {string} string "Unauthorized"
// @Router /user [get]
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, sessionUser(c), fiber.StatusOK)
}
