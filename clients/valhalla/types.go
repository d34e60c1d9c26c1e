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

// Location is a routing waypoint. Type "break" forces a stop, which makes
// Valhalla return one leg per segment.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type,omitempty"`
}

type routeRequest struct {
	Locations         []Location             `json:"locations"`
	Costing           string                 `json:"costing"`
	CostingOptions    map[string]interface{} `json:"costing_options"`
	DirectionsOptions map[string]interface{} `json:"directions_options"`
}

type routeResponse struct {
	Trip *Trip `json:"trip"`
}

// Trip is the routed result: one leg per location pair plus a summary.
type Trip struct {
	Legs    []Leg   `json:"legs"`
	Summary Summary `json:"summary"`
}

type Leg struct {
	Shape     string     `json:"shape"`
	Maneuvers []Maneuver `json:"maneuvers"`
}

type Maneuver struct {
	Instruction     string `json:"instruction"`
	BeginShapeIndex *int   `json:"begin_shape_index,omitempty"`
}

// Summary carries the total length (km, per directions_options units) and
// travel time (seconds).
type Summary struct {
	Length float64 `json:"length"`
	Time   float64 `json:"time"`
}
