// health.go
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
	"fmt"
	"time"

	"github.com/localnerve/runway/internal/config"
	"github.com/localnerve/runway/internal/utils"
	"github.com/sirupsen/logrus"
)

// Pinger checks database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Sessions     string            `json:"sessions"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every dependency answered
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthCheck checks the database and, when sessions live in Redis, that Redis is reachable
func HealthCheck(ctx context.Context, cfg *config.Config, db Pinger, log *logrus.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}
	fail := func(msg string) {
		result.Status = "unhealthy"
		if result.ErrorMessage == "" {
			result.ErrorMessage = msg
		} else {
			result.ErrorMessage += "; " + msg
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		result.Database = "unreachable"
		result.Details["database_error"] = err.Error()
		fail(fmt.Sprintf("Database ping failed: %v", err))
		log.WithError(err).Warn("Health check failed - database ping")
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	result.Sessions = cfg.SessionStore
	if cfg.SessionStore == "redis" {
		redisCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
		defer cancel()
		if err := utils.PingService(redisCtx, "redis://"+cfg.RedisAddr); err != nil {
			result.Sessions = "unreachable"
			result.Details["sessions_error"] = err.Error()
			fail(fmt.Sprintf("Redis ping failed: %v", err))
			log.WithError(err).Warn("Health check failed - redis ping")
		}
	}

	if result.Healthy() {
		log.Debug("Health check passed - all systems operational")
	}
	return result
}
