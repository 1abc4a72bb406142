// auth_service.go
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

package services

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/models"
	"github.com/sirupsen/logrus"
)

const sessionUserKey = "uid"

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering an existing username
	ErrUsernameTaken = errors.New("username already exists")
	// ErrNotAuthenticated is returned when the request carries no valid session
	ErrNotAuthenticated = errors.New("not authenticated")
)

// UserStore is the part of storage the auth service needs
type UserStore interface {
	GetUser(ctx context.Context, id uint64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

// Registration is a new account request
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=256"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

// AuthService owns password checks and the session lifecycle.
// A request is authenticated when its session holds a user id that still resolves to a user.
type AuthService struct {
	users     UserStore
	sessions  *session.Store
	log       *logrus.Logger
	dummyHash string
}

// NewAuthService creates the service over a user store and a fiber session store
func NewAuthService(users UserStore, sessions *session.Store, log *logrus.Logger) (*AuthService, error) {
	// compared against when the username is unknown so both failure paths cost the same
	dummy, err := HashPassword("runway-timing-equalizer")
	if err != nil {
		return nil, err
	}
	return &AuthService{users: users, sessions: sessions, log: log, dummyHash: dummy}, nil
}

// Register creates the account and signs the request in as the new user
func (a *AuthService) Register(c *fiber.Ctx, reg Registration) (*models.User, error) {
	ctx := c.UserContext()

	existing, err := a.users.GetUserByUsername(ctx, reg.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	user, err := a.users.CreateUser(ctx, &models.User{
		Username: reg.Username,
		Password: hash,
		Email:    reg.Email,
	})
	if err != nil {
		if errors.Is(err, database.ErrConstraintViolation) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if err := a.establish(c, user); err != nil {
		return nil, err
	}
	a.log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login verifies the credentials and moves the request to a fresh authenticated session
func (a *AuthService) Login(c *fiber.Ctx, username, password string) (*models.User, error) {
	user, err := a.users.GetUserByUsername(c.UserContext(), username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		VerifyPassword(password, a.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := a.establish(c, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout destroys the server-side session and expires the cookie
func (a *AuthService) Logout(c *fiber.Ctx) error {
	sess, err := a.sessions.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// CurrentUser re-derives the user from the session record.
// Any missing piece yields ErrNotAuthenticated.
func (a *AuthService) CurrentUser(c *fiber.Ctx) (*models.User, error) {
	sess, err := a.sessions.Get(c)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	uid, ok := sess.Get(sessionUserKey).(uint64)
	if !ok || uid == 0 {
		return nil, ErrNotAuthenticated
	}

	user, err := a.users.GetUser(c.UserContext(), uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// establish issues a new session id for user so a pre-login id can never be reused
func (a *AuthService) establish(c *fiber.Ctx, user *models.User) error {
	sess, err := a.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserKey, user.ID)
	return sess.Save()
}
