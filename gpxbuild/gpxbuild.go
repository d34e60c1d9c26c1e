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

// Package gpxbuild serializes routed tracks into GPX documents.
package gpxbuild

import (
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

const (
	TrackNameTurns  = "Percorso Moto"
	TrackNameSimple = "Percorso Moto (semplice)"
)

// Track builds a GPX document with one track segment from coords. When
// elevations is non-nil it must be indexed like coords; nil entries leave the
// point without elevation. Each maneuver becomes a named GPX waypoint.
func Track(coords []routing.Point, elevations []*float64, maneuvers []routing.Maneuver, name string) ([]byte, error) {
	doc := &gpx.GPX{}

	segment := gpx.GPXTrackSegment{}
	for i, c := range coords {
		point := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  c.Lat,
				Longitude: c.Lon,
			},
		}
		if elevations != nil && i < len(elevations) && elevations[i] != nil {
			point.Elevation = *gpx.NewNullableFloat64(*elevations[i])
		}
		segment.Points = append(segment.Points, point)
	}

	track := gpx.GPXTrack{Name: name}
	track.Segments = append(track.Segments, segment)
	doc.Tracks = append(doc.Tracks, track)

	for _, m := range maneuvers {
		doc.Waypoints = append(doc.Waypoints, gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  m.Lat,
				Longitude: m.Lon,
			},
			Name: m.Instruction,
		})
	}

	return doc.ToXml(gpx.ToXmlParams{Indent: true})
}
