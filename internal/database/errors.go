// errors.go
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

package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrConstraintViolation marks a write rejected by a unique constraint
var ErrConstraintViolation = errors.New("constraint violation")

const (
	mysqlDuplicateEntry  = 1062
	mysqlDeadlock        = 1213
	postgresUniqueCode   = "23505"
	postgresDeadlockCode = "40P01"
	sqliteUniqueFragment = "UNIQUE constraint failed"
	mssqlUniqueFragment  = "duplicate key"
)

// IsUniqueViolation reports whether err is a unique-constraint failure from any supported driver.
// GORM's translation covers most cases; the driver checks catch dialects or paths it misses.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrConstraintViolation) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueCode
	}

	msg := err.Error()
	return strings.Contains(msg, sqliteUniqueFragment) || strings.Contains(strings.ToLower(msg), mssqlUniqueFragment)
}

// IsDeadlock reports whether err is a transaction aborted by the engine's deadlock detector
func IsDeadlock(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresDeadlockCode
	}

	// SQLITE_LOCKED and SQLITE_BUSY
	msg := err.Error()
	return strings.Contains(msg, "database table is locked") || strings.Contains(msg, "database is locked")
}
