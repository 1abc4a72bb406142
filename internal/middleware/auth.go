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

package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/runway/internal/models"
	"github.com/localnerve/runway/internal/services"
	"github.com/localnerve/runway/internal/utils"
	"github.com/sirupsen/logrus"
)

const userLocalsKey = "user"

// Authenticator resolves the user behind a request's session
type Authenticator interface {
	CurrentUser(c *fiber.Ctx) (*models.User, error)
}

// RequireUser rejects the request with a plain 401 unless its session resolves to a user.
// The user is reloaded from storage on every request and stored for CurrentUser.
func RequireUser(auth Authenticator, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			if !errors.Is(err, services.ErrNotAuthenticated) {
				log.WithError(err).WithField("path", c.Path()).Warn("Session user lookup failed")
			}
			return utils.UnauthorizedResponse(c)
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user RequireUser attached to the request, or nil
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}
