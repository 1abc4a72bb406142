// devdb.go
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

// Package devdb starts a disposable MariaDB with testcontainers for local runs and integration tests.
package devdb

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/runway/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultImage is used when no image is given
const DefaultImage = "mariadb:11.4"

const (
	dbName     = "runway"
	dbUser     = "runway"
	dbPassword = "runway"
	dbPort     = "3306/tcp"
)

// MariaDB is a running database container
type MariaDB struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// StartMariaDB starts a MariaDB container and waits for it to accept connections
func StartMariaDB(ctx context.Context, image string) (*MariaDB, error) {
	if image == "" {
		image = DefaultImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{dbPort},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": dbPassword,
				"MARIADB_DATABASE":      dbName,
				"MARIADB_USER":          dbUser,
				"MARIADB_PASSWORD":      dbPassword,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("ready for connections").WithOccurrence(2),
				wait.ForListeningPort(dbPort),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MariaDB: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, dbPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &MariaDB{Container: container, Host: host, Port: port.Port()}, nil
}

// Config returns a service configuration pointed at the container
func (m *MariaDB) Config() *config.Config {
	return &config.Config{
		DBType:            "mariadb",
		DBHost:            m.Host,
		DBPort:            m.Port,
		DBDatabase:        dbName,
		DBUser:            dbUser,
		DBPassword:        dbPassword,
		DBConnectionLimit: 5,
	}
}

// Env returns the DB_* variables a server needs to reach the container
func (m *MariaDB) Env() map[string]string {
	return map[string]string{
		"DB_TYPE":     "mariadb",
		"DB_HOST":     m.Host,
		"DB_PORT":     m.Port,
		"DB_DATABASE": dbName,
		"DB_USER":     dbUser,
		"DB_PASSWORD": dbPassword,
	}
}

// Terminate stops and removes the container
func (m *MariaDB) Terminate(ctx context.Context) error {
	return m.Container.Terminate(ctx)
}
