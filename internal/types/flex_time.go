// flex_time.go
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

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrInvalidDate is returned when a FlexTime value cannot be read as a date
var ErrInvalidDate = errors.New("invalid date")

// FlexTime is a time that unmarshals from any common date string ("2026-06-01",
// RFC 3339, "June 1, 2026", ...) or a unix-millisecond number. Strings without a zone are UTC.
// Set reports whether a non-empty value was present.
type FlexTime struct {
	Time time.Time
	Set  bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		*f = FlexTime{Time: time.UnixMilli(ms).UTC(), Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("FlexTime: %w: expected date string or number", ErrInvalidDate)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return fmt.Errorf("FlexTime: %w %q: %v", ErrInvalidDate, s, err)
	}
	*f = FlexTime{Time: t.UTC(), Set: true}
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexTime) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time)
}

// Ptr returns the time, or nil when unset
func (f FlexTime) Ptr() *time.Time {
	if !f.Set {
		return nil
	}
	t := f.Time
	return &t
}
