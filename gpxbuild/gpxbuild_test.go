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

package gpxbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestTrack(t *testing.T) {
	coords := []routing.Point{
		{Lat: 45.4642, Lon: 9.19},
		{Lat: 45.465, Lon: 9.1912},
		{Lat: 45.4661, Lon: 9.1925},
	}
	elevations := []*float64{floatPtr(120.5), nil, floatPtr(124.0)}
	maneuvers := []routing.Maneuver{
		{Point: coords[0], Instruction: "Parti verso nord"},
		{Point: coords[2], Instruction: "Sei arrivato"},
	}

	data, err := Track(coords, elevations, maneuvers, TrackNameTurns)
	require.NoError(t, err)

	doc, err := gpx.ParseBytes(data)
	require.NoError(t, err)

	require.Len(t, doc.Tracks, 1)
	assert.Equal(t, TrackNameTurns, doc.Tracks[0].Name)

	require.Len(t, doc.Tracks[0].Segments, 1)
	points := doc.Tracks[0].Segments[0].Points
	require.Len(t, points, 3)
	assert.InDelta(t, 45.4642, points[0].Latitude, 1e-9)

	assert.True(t, points[0].Elevation.NotNull())
	assert.InDelta(t, 120.5, points[0].Elevation.Value(), 1e-9)
	assert.False(t, points[1].Elevation.NotNull())

	require.Len(t, doc.Waypoints, 2)
	assert.Equal(t, "Parti verso nord", doc.Waypoints[0].Name)
	assert.Equal(t, "Sei arrivato", doc.Waypoints[1].Name)
}

func TestTrackWithoutManeuvers(t *testing.T) {
	coords := []routing.Point{
		{Lat: 45.4642, Lon: 9.19},
		{Lat: 45.465, Lon: 9.1912},
	}

	data, err := Track(coords, nil, nil, TrackNameSimple)
	require.NoError(t, err)

	doc, err := gpx.ParseBytes(data)
	require.NoError(t, err)

	assert.Equal(t, TrackNameSimple, doc.Tracks[0].Name)
	assert.Empty(t, doc.Waypoints)
	assert.False(t, doc.Tracks[0].Segments[0].Points[0].Elevation.NotNull())
}
