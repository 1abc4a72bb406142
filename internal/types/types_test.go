// types_test.go
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
	"testing"
	"time"
)

func TestFlexListNormalizes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantNil bool
		want    []string
	}{
		{name: "absent", input: `{}`, wantNil: true, want: []string{}},
		{name: "null", input: `{"list":null}`, wantNil: true, want: []string{}},
		{name: "single string", input: `{"list":"a.png"}`, want: []string{"a.png"}},
		{name: "empty string", input: `{"list":""}`, want: []string{}},
		{name: "array", input: `{"list":["a.png","b.png","c.png"]}`, want: []string{"a.png", "b.png", "c.png"}},
		{name: "empty array", input: `{"list":[]}`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				List FlexList[string] `json:"list"`
			}
			if err := json.Unmarshal([]byte(tt.input), &doc); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if (doc.List == nil) != tt.wantNil {
				t.Errorf("Expected nil=%v, got %v", tt.wantNil, doc.List)
			}
			got := doc.List.Slice()
			if got == nil {
				t.Fatal("Slice must never return nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Index %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestFlexInt64(t *testing.T) {
	var doc struct {
		A FlexInt64 `json:"a"`
		B FlexInt64 `json:"b"`
		C FlexInt64 `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":12,"b":"34"}`), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !doc.A.Set || doc.A.Int64() != 12 {
		t.Errorf("Expected a=12, got %+v", doc.A)
	}
	if !doc.B.Set || doc.B.Int64() != 34 {
		t.Errorf("Expected b=34, got %+v", doc.B)
	}
	if doc.C.Set {
		t.Error("Expected c to be unset")
	}

	if err := json.Unmarshal([]byte(`{"a":"twelve"}`), &doc); err == nil {
		t.Error("Expected error for non-numeric string")
	}
}

func TestFlexTimeParsesCommonForms(t *testing.T) {
	want := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{`"2026-06-01"`, `"2026-06-01T00:00:00Z"`, `"June 1, 2026"`, `1780272000000`} {
		var ft FlexTime
		if err := json.Unmarshal([]byte(input), &ft); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", input, err)
			continue
		}
		if !ft.Set || !ft.Time.Equal(want) {
			t.Errorf("Unmarshal(%s) = %v (set=%v), want %v", input, ft.Time, ft.Set, want)
		}
	}
}

func TestFlexTimeEmptyAndInvalid(t *testing.T) {
	for _, input := range []string{`null`, `""`, `"  "`} {
		var ft FlexTime
		if err := json.Unmarshal([]byte(input), &ft); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", input, err)
		}
		if ft.Set || ft.Ptr() != nil {
			t.Errorf("Unmarshal(%s) should leave the time unset", input)
		}
	}

	var ft FlexTime
	if err := json.Unmarshal([]byte(`"not a date"`), &ft); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate for an unparseable date, got %v", err)
	}
	if err := json.Unmarshal([]byte(`true`), &ft); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate for a boolean, got %v", err)
	}
}
