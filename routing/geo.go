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

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Maneuver is a turn instruction anchored to a point of the route shape.
type Maneuver struct {
	Point
	Instruction string
}

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BearingDeg returns the initial bearing from a to b, in [0, 360) degrees.
func BearingDeg(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(degrees(math.Atan2(y, x))+360.0, 360.0)
}

// Destination projects a point at the given bearing and distance from start.
func Destination(start Point, bearingDeg float64, distanceKm float64) Point {
	bearing := radians(bearingDeg)
	d := distanceKm / earthRadiusKm
	lat1 := radians(start.Lat)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) +
		math.Cos(lat1)*math.Sin(d)*math.Cos(bearing))
	lon2 := radians(start.Lon) + math.Atan2(
		math.Sin(bearing)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Point{Lat: degrees(lat2), Lon: degrees(lon2)}
}

// ApproxTotalKm chains the crow-line distance between consecutive points,
// closing the loop back to the first point when roundtrip is set.
func ApproxTotalKm(points []Point, roundtrip bool) float64 {
	if len(points) < 2 {
		return 0.0
	}
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		total += HaversineKm(points[i], points[i+1])
	}
	if roundtrip {
		total += HaversineKm(points[len(points)-1], points[0])
	}
	return total
}

// EnsureClosedLoop appends the start point when a roundtrip shape does not end
// where it began. Points are compared at 6 decimals, the shape precision.
func EnsureClosedLoop(coords []Point, start Point, roundtrip bool) []Point {
	if !roundtrip || len(coords) == 0 {
		return coords
	}
	last := coords[len(coords)-1]
	if round6(last.Lat) != round6(start.Lat) || round6(last.Lon) != round6(start.Lon) {
		coords = append(coords, start)
	}
	return coords
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
