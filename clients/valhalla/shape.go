// Copyright 2024 Valloteo
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package valhalla

import (
	"errors"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

var ErrEmptyShape = errors.New("trip has no usable shape")

// ExtractShape concatenates the decoded shapes of every leg into a single
// coordinate list and re-anchors each maneuver to its global shape index.
// The duplicated junction point between consecutive legs is dropped.
func (t *Trip) ExtractShape() ([]routing.Point, []routing.Maneuver, error) {
	if t == nil || len(t.Legs) == 0 {
		return nil, nil, ErrEmptyShape
	}

	var coords []routing.Point
	var maneuvers []routing.Maneuver
	lenBeforeLeg := 0

	for _, leg := range t.Legs {
		if leg.Shape == "" {
			continue
		}
		legCoords, err := DecodePolyline6(leg.Shape)
		if err != nil {
			return nil, nil, err
		}
		if len(legCoords) == 0 {
			continue
		}

		if len(coords) > 0 && coords[len(coords)-1] == legCoords[0] {
			legCoords = legCoords[1:]
		}

		for _, m := range leg.Maneuvers {
			if m.BeginShapeIndex == nil {
				continue
			}
			globalIdx := lenBeforeLeg + *m.BeginShapeIndex

			var at routing.Point
			if globalIdx >= 0 && globalIdx < len(coords) {
				at = coords[globalIdx]
			} else {
				rel := globalIdx - len(coords)
				if rel < 0 || rel >= len(legCoords) {
					continue
				}
				at = legCoords[rel]
			}
			maneuvers = append(maneuvers, routing.Maneuver{
				Point:       at,
				Instruction: m.Instruction,
			})
		}

		coords = append(coords, legCoords...)
		lenBeforeLeg = len(coords)
	}

	if len(coords) == 0 {
		return nil, nil, ErrEmptyShape
	}
	return coords, maneuvers, nil
}
