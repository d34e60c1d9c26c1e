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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

func intPtr(v int) *int {
	return &v
}

func TestExtractShapeSingleLeg(t *testing.T) {
	coords := []routing.Point{
		{Lat: 45.464200, Lon: 9.190000},
		{Lat: 45.465000, Lon: 9.191200},
		{Lat: 45.466100, Lon: 9.192500},
	}
	trip := &Trip{
		Legs: []Leg{{
			Shape: encodePolyline6(coords),
			Maneuvers: []Maneuver{
				{Instruction: "Parti verso nord", BeginShapeIndex: intPtr(0)},
				{Instruction: "Svolta a destra", BeginShapeIndex: intPtr(2)},
			},
		}},
	}

	shape, maneuvers, err := trip.ExtractShape()
	require.NoError(t, err)
	require.Len(t, shape, 3)
	require.Len(t, maneuvers, 2)

	assert.Equal(t, "Parti verso nord", maneuvers[0].Instruction)
	assert.InDelta(t, coords[0].Lat, maneuvers[0].Point.Lat, 1e-6)
	assert.InDelta(t, coords[2].Lat, maneuvers[1].Point.Lat, 1e-6)
}

func TestExtractShapeMultiLegDropsJunction(t *testing.T) {
	legA := []routing.Point{
		{Lat: 45.464200, Lon: 9.190000},
		{Lat: 45.465000, Lon: 9.191200},
	}
	// The second leg starts exactly where the first one ends
	legB := []routing.Point{
		{Lat: 45.465000, Lon: 9.191200},
		{Lat: 45.466100, Lon: 9.192500},
		{Lat: 45.467000, Lon: 9.194000},
	}
	trip := &Trip{
		Legs: []Leg{
			{Shape: encodePolyline6(legA)},
			{Shape: encodePolyline6(legB)},
		},
	}

	shape, _, err := trip.ExtractShape()
	require.NoError(t, err)
	require.Len(t, shape, 4)

	// No duplicated junction point
	for i := 1; i < len(shape); i++ {
		assert.NotEqual(t, shape[i-1], shape[i])
	}
	assert.InDelta(t, legB[2].Lat, shape[3].Lat, 1e-6)
}

func TestExtractShapeEmpty(t *testing.T) {
	_, _, err := (&Trip{}).ExtractShape()
	assert.ErrorIs(t, err, ErrEmptyShape)

	var nilTrip *Trip
	_, _, err = nilTrip.ExtractShape()
	assert.ErrorIs(t, err, ErrEmptyShape)

	_, _, err = (&Trip{Legs: []Leg{{Shape: ""}}}).ExtractShape()
	assert.ErrorIs(t, err, ErrEmptyShape)
}
