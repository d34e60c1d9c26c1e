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

// SampleAlong walks the polyline and emits a point roughly every stepM meters,
// always keeping the first and last points.
func SampleAlong(coords []Point, stepM float64) []Point {
	if len(coords) < 2 {
		out := make([]Point, len(coords))
		copy(out, coords)
		return out
	}

	sampled := []Point{coords[0]}
	acc := 0.0
	for i := 1; i < len(coords); i++ {
		a := coords[i-1]
		b := coords[i]
		segM := HaversineKm(a, b) * 1000.0
		if segM <= 0 {
			continue
		}
		needed := int((acc + segM) / stepM)
		for n := 1; n <= needed; n++ {
			distM := float64(n)*stepM - acc
			if distM < 0 || distM > segM {
				continue
			}
			t := distM / segM
			sampled = append(sampled, Point{
				Lat: a.Lat + (b.Lat-a.Lat)*t,
				Lon: a.Lon + (b.Lon-a.Lon)*t,
			})
		}
		acc = mod(acc+segM, stepM)
	}

	last := coords[len(coords)-1]
	if sampled[len(sampled)-1] != last {
		sampled = append(sampled, last)
	}
	return sampled
}

// Subsample keeps every step-th point, caps the result at maxPoints and always
// keeps the last point. Used to fit long shapes into static map URLs.
func Subsample(coords []Point, step int, maxPoints int) []Point {
	if len(coords) == 0 {
		return coords
	}
	out := []Point{}
	for i := 0; i < len(coords); i += step {
		out = append(out, coords[i])
	}
	if len(out) > maxPoints {
		ratio := (len(out) + maxPoints - 1) / maxPoints
		reduced := []Point{}
		for i := 0; i < len(out); i += ratio {
			reduced = append(reduced, out[i])
		}
		out = reduced
	}
	if out[len(out)-1] != coords[len(coords)-1] {
		out = append(out, coords[len(coords)-1])
	}
	return out
}

func mod(a, b float64) float64 {
	for a >= b {
		a -= b
	}
	return a
}
