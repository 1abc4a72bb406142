// embed.go
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

// Package data embeds the reference-move catalogue shipped with the service.
package data

import (
	_ "embed"
	"fmt"

	"github.com/localnerve/runway/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

//go:embed reference_moves.yaml
var referenceMovesYAML []byte

type catalogue struct {
	Moves []struct {
		MoveID      int64              `yaml:"moveId"`
		Name        string             `yaml:"name"`
		Category    string             `yaml:"category"`
		ImageURL    string             `yaml:"imageUrl"`
		JointAngles map[string]float64 `yaml:"jointAngles"`
	} `yaml:"moves"`
}

// LoadReferenceMoves parses the embedded catalogue
func LoadReferenceMoves() ([]models.ReferenceMove, error) {
	return ParseReferenceMoves(referenceMovesYAML)
}

// ParseReferenceMoves parses a catalogue document. Every move needs a positive, unique moveId and a name.
func ParseReferenceMoves(raw []byte) ([]models.ReferenceMove, error) {
	var doc catalogue
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse reference moves: %w", err)
	}

	seen := make(map[int64]bool, len(doc.Moves))
	moves := make([]models.ReferenceMove, 0, len(doc.Moves))
	for i, m := range doc.Moves {
		if m.MoveID <= 0 || m.Name == "" {
			return nil, fmt.Errorf("reference move %d: moveId and name are required", i)
		}
		if seen[m.MoveID] {
			return nil, fmt.Errorf("reference move %d: duplicate moveId %d", i, m.MoveID)
		}
		seen[m.MoveID] = true

		move := models.ReferenceMove{
			MoveID:   m.MoveID,
			Name:     m.Name,
			Category: m.Category,
			ImageURL: m.ImageURL,
		}
		if len(m.JointAngles) > 0 {
			move.JointAngles = datatypes.NewJSONType(m.JointAngles)
		}
		moves = append(moves, move)
	}
	return moves, nil
}
