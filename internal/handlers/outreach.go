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

package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/models"
	"github.com/localnerve/runway/internal/services"
	"github.com/localnerve/runway/internal/storage"
	"github.com/localnerve/runway/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	earlyAccessThanks    = "Thank you for your interest! We'll notify you when early access is available."
	earlyAccessDuplicate = "Thank you! Your email is already registered for early access."
	landingImageDir      = "LandingPageImages"
)

var (
	dataURLPrefix  = regexp.MustCompile(`^data:image/(\w+);base64,`)
	unsafeFileChar = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// OutreachHandler handles the public landing-page routes
type OutreachHandler struct {
	Store     *storage.Storage
	Guide     *services.GuideSender
	Log       *logrus.Logger
	PublicDir string
	// DowngradeFailures answers every undelivered guide with the fallback message and a 200
	// so the signup flow never breaks on the email provider.
	DowngradeFailures bool
}

type earlyAccessRequest struct {
	Email  string `json:"email" validate:"required,email,max=255"`
	Name   string `json:"name" validate:"max=255"`
	Source string `json:"source" validate:"max=64"`
}

type sendGuideRequest struct {
	Email string `json:"email" validate:"required"`
}

type landingImageRequest struct {
	Section  string `json:"section" validate:"required,max=64"`
	ImageURL string `json:"imageUrl" validate:"required"`
}

type landingImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// SaveEarlyAccess handles POST /api/early-access
// @Summary Join the early-access list
// @Description Signing up twice with the same email succeeds without a second entry
// @Tags Outreach
// @Accept json
// @Produce json
// @Param body body earlyAccessRequest true "Signup"
// @Success 200 {object} utils.MessageResponseStruct
// @Success 201 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /early-access [post]
func (h *OutreachHandler) SaveEarlyAccess(c *fiber.Ctx) error {
	var req earlyAccessRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.Store.GetEarlyAccessByEmail(c.UserContext(), email)
	if err != nil {
		return storageFailure(c, h.Log, "getEarlyAccess", err)
	}
	if existing != nil {
		return utils.MessageResponse(c, earlyAccessDuplicate, fiber.StatusOK)
	}

	_, err = h.Store.SaveEarlyAccess(c.UserContext(), models.EarlyAccessSignup{
		Email:  email,
		Name:   req.Name,
		Source: req.Source,
	})
	if err != nil {
		if errors.Is(err, database.ErrConstraintViolation) {
			return utils.MessageResponse(c, earlyAccessDuplicate, fiber.StatusOK)
		}
		return storageFailure(c, h.Log, "saveEarlyAccess", err)
	}
	return utils.MessageResponse(c, earlyAccessThanks, fiber.StatusCreated)
}

// ListEarlyAccess handles GET /api/early-access
// @Summary List early-access signups
// @Tags Outreach
// @Produce json
// @Success 200 {array} models.EarlyAccessSignup
// @Router /early-access [get]
func (h *OutreachHandler) ListEarlyAccess(c *fiber.Ctx) error {
	signups, err := h.Store.ListEarlyAccessSignups(c.UserContext())
	if err != nil {
		return storageFailure(c, h.Log, "listEarlyAccess", err)
	}
	return utils.SuccessResponse(c, signups, fiber.StatusOK)
}

// SendGuide handles POST /api/send-guide
// @Summary Email the setup guide
// @Description Every attempt is audited. Delivery problems still answer 200 with a fallback message.
// @Tags Outreach
// @Accept json
// @Produce json
// @Param body body sendGuideRequest true "Recipient"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /send-guide [post]
func (h *OutreachHandler) SendGuide(c *fiber.Ctx) error {
	var req sendGuideRequest
	if err := bindBody(c, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		return utils.ValidationErrorResponse(c, "Email is required")
	}

	out := h.Guide.Send(c.UserContext(), strings.TrimSpace(req.Email))
	if out.Status == models.EmailSent {
		return utils.MessageResponse(c, services.GuideSentMessage, fiber.StatusOK)
	}
	if h.DowngradeFailures {
		return utils.MessageResponse(c, services.GuideFallbackMessage, fiber.StatusOK)
	}

	if out.Status == models.EmailSkipped {
		return utils.ErrorResponse(c, "Email delivery is not configured", fiber.StatusServiceUnavailable, utils.ErrorTypeUpstream)
	}
	return utils.ErrorResponse(c, fmt.Sprintf("Email delivery failed: %v", out.Err), fiber.StatusBadGateway, utils.ErrorTypeUpstream)
}

// SaveLandingImage handles POST /api/landing-image
// @Summary Store a landing-page image (development)
// @Description Writes a base64 data URL into the public directory
// @Tags Outreach
// @Accept json
// @Produce json
// @Param body body landingImageRequest true "Image"
// @Success 200 {object} landingImageResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /landing-image [post]
func (h *OutreachHandler) SaveLandingImage(c *fiber.Ctx) error {
	var req landingImageRequest
	if err := bindBody(c, &req); err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	ext := "png"
	if m := dataURLPrefix.FindStringSubmatch(req.ImageURL); m != nil {
		ext = strings.ToLower(m[1])
	}
	raw, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(req.ImageURL, ""))
	if err != nil || len(raw) == 0 {
		return utils.ValidationErrorResponse(c, "imageUrl must be a base64 image data URL")
	}

	section := unsafeFileChar.ReplaceAllString(req.Section, "-")
	filename := fmt.Sprintf("%s-%d.%s", section, time.Now().UnixMilli(), ext)
	dir := filepath.Join(h.PublicDir, landingImageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "saveLandingImage")
	}
	if err := os.WriteFile(filepath.Join(dir, filename), raw, 0o644); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "saveLandingImage")
	}

	return utils.SuccessResponse(c, landingImageResponse{ImageURL: "/" + landingImageDir + "/" + filename}, fiber.StatusOK)
}
