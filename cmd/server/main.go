// main.go
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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/runway/internal/config"
	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/logging"
	"github.com/localnerve/runway/internal/server"
	"github.com/localnerve/runway/internal/services"
	"github.com/sirupsen/logrus"
)

// @title Runway AI API
// @version 1.0.0
// @description Session-authenticated data service for the Runway AI pageant training application
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/runway
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name runway_sid

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	ctx := context.Background()
	store, err := server.OpenStorage(ctx, cfg, db, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("Storage close failed")
		}
	}()

	coach := services.NewOpenAICoach(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	if coach == nil {
		log.Warn("OPENAI_API_KEY is not set; coach routes will fail")
	}
	var mailer services.Mailer
	if m := services.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom); m != nil {
		mailer = m
	} else {
		log.Warn("RESEND_API_KEY is not set; guide emails will be skipped")
	}

	app, err := server.New(server.Deps{
		Config: cfg,
		Store:  store,
		Coach:  coach,
		Mailer: mailer,
		Log:    log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to build application")
	}

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigs
		log.WithField("signal", sig.String()).Info("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Warn("Shutdown did not complete cleanly")
		}
	}()

	// Start server
	log.WithField("port", cfg.Port).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("Server failed")
	}

	log.Info("Server stopped")
}
