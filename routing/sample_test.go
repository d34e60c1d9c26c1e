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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleAlong(t *testing.T) {
	// A straight ~1.1km west-east segment at Milano's latitude
	start := Point{Lat: 45.4642, Lon: 9.19}
	end := Point{Lat: 45.4642, Lon: 9.204}
	segmentM := HaversineKm(start, end) * 1000.0
	require.Greater(t, segmentM, 1000.0)

	sampled := SampleAlong([]Point{start, end}, 50.0)

	assert.Equal(t, start, sampled[0])
	assert.Equal(t, end, sampled[len(sampled)-1])

	// Roughly one point every 50m
	expected := int(segmentM / 50.0)
	assert.InDelta(t, expected, len(sampled), 2)

	// Consecutive samples are close to 50m apart
	for i := 1; i < len(sampled)-1; i++ {
		d := HaversineKm(sampled[i-1], sampled[i]) * 1000.0
		assert.InDelta(t, 50.0, d, 5.0)
	}
}

func TestSampleAlongDegenerate(t *testing.T) {
	assert.Empty(t, SampleAlong(nil, 50.0))

	single := []Point{{Lat: 1, Lon: 2}}
	assert.Equal(t, single, SampleAlong(single, 50.0))
}

func TestSubsample(t *testing.T) {
	coords := make([]Point, 10000)
	for i := range coords {
		coords[i] = Point{Lat: float64(i), Lon: float64(i)}
	}

	out := Subsample(coords, 20, 300)

	assert.LessOrEqual(t, len(out), 302)
	assert.Equal(t, coords[0], out[0])
	assert.Equal(t, coords[len(coords)-1], out[len(out)-1])
}

func TestSubsampleShort(t *testing.T) {
	coords := []Point{{Lat: 1}, {Lat: 2}, {Lat: 3}}
	out := Subsample(coords, 20, 300)
	assert.Equal(t, coords[0], out[0])
	assert.Equal(t, coords[2], out[len(out)-1])
}
