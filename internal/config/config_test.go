// config_test.go
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

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DATABASE", "runway.db")
	t.Setenv("DB_TYPE", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Expected default port 3000, got %s", cfg.Port)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("Expected default session TTL of 7 days, got %v", cfg.SessionTTL)
	}
	if cfg.SessionStore != "database" {
		t.Errorf("Expected database session store, got %s", cfg.SessionStore)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("Expected gpt-4o model, got %s", cfg.OpenAIModel)
	}
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("DB_DATABASE", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when DB_DATABASE is missing")
	}
}

func TestLoadRequiresUserForServerDatabases(t *testing.T) {
	t.Setenv("DB_DATABASE", "runway")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_USER", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when DB_USER is missing for postgres")
	}
}

func TestLoadRejectsUnknownSessionStore(t *testing.T) {
	t.Setenv("DB_DATABASE", "runway.db")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SESSION_STORE", "memcached")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unsupported session store")
	}
}

func TestLoadValidatesSessionSecret(t *testing.T) {
	t.Setenv("DB_DATABASE", "runway.db")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SESSION_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Error("Expected error for a malformed session secret")
	}

	t.Setenv("SESSION_SECRET", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected 32 byte key to load, got %v", err)
	}
	if cfg.SessionSecret == "" {
		t.Error("Expected session secret to be kept")
	}
}

func TestEnvParsing(t *testing.T) {
	t.Setenv("TEST_DURATION_SECONDS", "90")
	t.Setenv("TEST_DURATION", "36h")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_INT", "not-a-number")

	if got := getEnvAsDuration("TEST_DURATION_SECONDS", 0); got != 90*time.Second {
		t.Errorf("Expected 90s, got %v", got)
	}
	if got := getEnvAsDuration("TEST_DURATION", 0); got != 36*time.Hour {
		t.Errorf("Expected 36h, got %v", got)
	}
	if !getEnvAsBool("TEST_BOOL", false) {
		t.Error("Expected true")
	}
	if got := getEnvAsInt("TEST_INT", 7); got != 7 {
		t.Errorf("Expected fallback 7, got %d", got)
	}

	origins := parseCSV(" https://a.example , ,https://b.example")
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Errorf("Unexpected CSV parse result: %v", origins)
	}
}
