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

package routing

import "math"

// Compass codes use the Italian convention: O for west (Ovest).
var directionAngles = map[string]float64{
	"N": 0.0, "NE": 45.0, "E": 90.0, "SE": 135.0,
	"S": 180.0, "SO": 225.0, "O": 270.0, "NO": 315.0,
}

const defaultDirectionAngle = 45.0

// DirectionAngle resolves a compass code to a bearing in degrees. Unknown
// codes (including the "skip" pseudo-direction) fall back to northeast.
func DirectionAngle(code string) float64 {
	if angle, ok := directionAngles[code]; ok {
		return angle
	}
	return defaultDirectionAngle
}

// DirectionCodes lists the eight supported compass codes in display order.
func DirectionCodes() []string {
	return []string{"N", "NE", "E", "SE", "S", "SO", "O", "NO"}
}

// DistributeRoundTripWaypoints places totalTarget waypoints on the three
// angular slots around the chosen direction (-40, 0, +40 degrees) at the
// given radius. Manual waypoints claim the slot closest to their bearing from
// the start; slots left empty are filled with projected points.
func DistributeRoundTripWaypoints(
	start Point,
	directionCode string,
	manual []Point,
	totalTarget int,
	radiusKm float64,
) []Point {
	baseAngle := DirectionAngle(directionCode)
	slots := []float64{baseAngle - 40.0, baseAngle, baseAngle + 40.0}
	assigned := make([]*Point, len(slots))

	for i := range manual {
		p := manual[i]
		bearing := BearingDeg(start, p)
		bestSlot := 0
		bestDiff := math.Inf(1)
		for slotIdx, slotAngle := range slots {
			diff := math.Abs(angleDiff(bearing, slotAngle))
			if diff < bestDiff {
				bestDiff = diff
				bestSlot = slotIdx
			}
		}
		if assigned[bestSlot] == nil {
			assigned[bestSlot] = &p
			continue
		}
		for slotIdx := range assigned {
			if assigned[slotIdx] == nil {
				assigned[slotIdx] = &p
				break
			}
		}
	}

	for slotIdx := range assigned {
		if assigned[slotIdx] == nil {
			p := Destination(start, slots[slotIdx], radiusKm)
			assigned[slotIdx] = &p
		}
	}

	if totalTarget > len(assigned) {
		totalTarget = len(assigned)
	}
	result := make([]Point, 0, totalTarget)
	for _, p := range assigned[:totalTarget] {
		result = append(result, *p)
	}
	return result
}

// angleDiff returns the signed smallest difference between two bearings.
func angleDiff(a, b float64) float64 {
	return math.Mod(a-b+180.0+360.0, 360.0) - 180.0
}
