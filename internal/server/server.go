// server.go
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

// Package server assembles the Fiber application: global middleware, sessions, metrics, docs, and routes.
package server

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	swagger "github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/localnerve/runway/internal/config"
	"github.com/localnerve/runway/internal/handlers"
	"github.com/localnerve/runway/internal/middleware"
	"github.com/localnerve/runway/internal/services"
	"github.com/localnerve/runway/internal/storage"
	"github.com/localnerve/runway/internal/types"
	"github.com/localnerve/runway/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "github.com/localnerve/runway/docs/api" // Swagger docs
)

// SessionCookieName is the cookie carrying the session id
const SessionCookieName = "runway_sid"

// maximum request body, sized for base64 landing images
const bodyLimit = 12 * 1024 * 1024

// Deps are the collaborators the application is built from
type Deps struct {
	Config *config.Config
	Store  *storage.Storage
	Coach  services.Coach
	Mailer services.Mailer
	Log    *logrus.Logger
	// Metrics receives the HTTP and guide-email collectors and backs /metrics.
	// Defaults to the global registry.
	Metrics *prometheus.Registry
	// Now stamps practice dates. Defaults to time.Now.
	Now func() time.Time
}

// OpenStorage creates the storage layer, with Redis-backed sessions when configured
func OpenStorage(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*storage.Storage, error) {
	opts := []storage.Option{storage.WithLogger(log)}
	if cfg.SessionStore == "redis" {
		redisStore, err := storage.NewRedisSessionStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		opts = append(opts, storage.WithSessionStorage(redisStore))
		log.WithField("addr", cfg.RedisAddr).Info("Sessions stored in Redis")
	}
	return storage.New(db, opts...)
}

// New builds the application
func New(d Deps) (*fiber.App, error) {
	cfg, log := d.Config, d.Log
	if d.Metrics == nil {
		d.Metrics = prometheus.DefaultRegisterer.(*prometheus.Registry)
	}
	if d.Coach == nil {
		d.Coach = (*services.OpenAICoach)(nil)
	}

	app := fiber.New(fiber.Config{
		AppName:      "runway",
		ErrorHandler: errorHandler(log),
		BodyLimit:    bodyLimit,
	})

	// Global middleware
	accessLog := log.WriterLevel(logrus.InfoLevel)
	app.Hooks().OnShutdown(accessLog.Close)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: accessLog}))
	app.Use(compress.New())
	switch origins := strings.Join(cfg.CorsOrigins, ","); origins {
	case "":
	case "*":
		// credentials cannot be combined with a wildcard origin
		app.Use(cors.New())
	default:
		app.Use(cors.New(cors.Config{AllowOrigins: origins, AllowCredentials: true}))
	}
	app.Use(encryptcookie.New(encryptcookie.Config{Key: cookieKey(cfg, log)}))

	// Prometheus metrics
	metrics := fiberprometheus.NewWithRegistry(d.Metrics, "runway", "http", "", nil)
	metrics.RegisterAt(app, "/metrics")
	app.Use(metrics.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	sessions := session.New(session.Config{
		Storage:        d.Store.SessionStore(),
		Expiration:     cfg.SessionTTL,
		KeyLookup:      "cookie:" + SessionCookieName,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		KeyGenerator:   uuid.NewString,
	})
	auth, err := services.NewAuthService(d.Store, sessions, log)
	if err != nil {
		return nil, err
	}
	guide := services.NewGuideSender(d.Store, d.Mailer, log, d.Metrics)

	authHandler := &handlers.AuthHandler{Auth: auth, Log: log}
	profileHandler := &handlers.ProfileHandler{Store: d.Store, Log: log}
	trainingHandler := &handlers.TrainingHandler{Store: d.Store, Log: log, Now: d.Now}
	moveHandler := &handlers.MoveHandler{Store: d.Store, Log: log}
	outreachHandler := &handlers.OutreachHandler{
		Store:             d.Store,
		Guide:             guide,
		Log:               log,
		PublicDir:         cfg.PublicDir,
		DowngradeFailures: true,
	}
	coachHandler := &handlers.CoachHandler{Coach: d.Coach, Log: log}
	healthHandler := &handlers.HealthHandler{Config: cfg, DB: d.Store, Log: log}

	requireUser := middleware.RequireUser(auth, log)
	throttle := rateLimit(cfg.RateLimitPerMinute)

	// API routes under /api
	api := app.Group("/api")

	api.Get("/health", healthHandler.Health)

	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)
	api.Get("/user", requireUser, authHandler.CurrentUser)

	api.Post("/early-access", outreachHandler.SaveEarlyAccess)
	api.Get("/early-access", outreachHandler.ListEarlyAccess)
	api.Post("/send-guide", throttle, outreachHandler.SendGuide)
	api.Post("/landing-image", outreachHandler.SaveLandingImage)

	api.Get("/profile", requireUser, profileHandler.GetProfile)
	api.Post("/profile", requireUser, profileHandler.SaveProfile)
	api.Post("/profile/goal", requireUser, profileHandler.SaveGoal)
	api.Post("/gallery", requireUser, profileHandler.AddGalleryImage)
	api.Delete("/gallery", requireUser, profileHandler.RemoveGalleryImage)
	api.Get("/tracking-settings", requireUser, profileHandler.GetTrackingSettings)
	api.Post("/tracking-settings", requireUser, profileHandler.SaveTrackingSettings)

	api.Get("/recordings", requireUser, trainingHandler.GetRecordings)
	api.Post("/recordings", requireUser, trainingHandler.SaveRecording)
	api.Delete("/recordings/:id", requireUser, trainingHandler.DeleteRecording)
	api.Post("/practice", requireUser, trainingHandler.RecordPractice)
	api.Get("/pageants", requireUser, trainingHandler.GetPageants)
	api.Post("/pageants", requireUser, trainingHandler.SavePageant)
	api.Delete("/pageants/:id", requireUser, trainingHandler.DeletePageant)

	api.Post("/reference-moves", moveHandler.SaveReferenceMove)
	api.Get("/reference-moves", moveHandler.GetReferenceMoves)
	api.Get("/reference-moves/:moveId", moveHandler.GetReferenceMove)

	api.Post("/ai-chat", throttle, coachHandler.Chat)
	api.Post("/analyze-response", requireUser, coachHandler.AnalyzeResponse)

	// 404 handler for the API
	api.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Client application
	if info, err := os.Stat(cfg.PublicDir); err == nil && info.IsDir() {
		app.Static("/", cfg.PublicDir, fiber.Static{Compress: true, Index: "index.html"})
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile(cfg.PublicDir + "/index.html")
		})
	}

	return app, nil
}

// cookieKey returns the cookie encryption key, generating one when none is configured
func cookieKey(cfg *config.Config, log *logrus.Logger) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	log.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
	return encryptcookie.GenerateKey()
}

func rateLimit(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return types.Reject(fiber.StatusTooManyRequests, "Too many requests, please try again later", "rateLimit")
		},
	})
}

// errorHandler renders errors that escape handlers with the standard envelope
func errorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()
		errorType := utils.ErrorTypeInternal

		var fe *fiber.Error
		var ce *types.CustomError
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
			errorType = "http"
		case errors.As(err, &ce):
			code = ce.Code
			message = ce.Message
			errorType = ce.Type
		}

		if code >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")
		}
		return utils.ErrorResponse(c, message, code, errorType)
	}
}
