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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

// encodePolyline6 is the inverse of DecodePolyline6, used to build fixtures.
func encodePolyline6(coords []routing.Point) string {
	encodeValue := func(v int64) string {
		v <<= 1
		if v < 0 {
			v = ^v
		}
		var out []byte
		for v >= 0x20 {
			out = append(out, byte((0x20|(v&0x1f))+63))
			v >>= 5
		}
		out = append(out, byte(v+63))
		return string(out)
	}

	var encoded string
	var lastLat, lastLon int64
	for _, p := range coords {
		lat := int64(math.Round(p.Lat * 1e6))
		lon := int64(math.Round(p.Lon * 1e6))
		encoded += encodeValue(lat-lastLat) + encodeValue(lon-lastLon)
		lastLat = lat
		lastLon = lon
	}
	return encoded
}

func TestDecodePolyline6(t *testing.T) {
	coords := []routing.Point{
		{Lat: 45.4642, Lon: 9.19},
		{Lat: 45.465, Lon: 9.1912},
		{Lat: 45.4632, Lon: 9.189},
		{Lat: -12.043333, Lon: -77.028333},
	}

	decoded, err := DecodePolyline6(encodePolyline6(coords))
	require.NoError(t, err)
	require.Len(t, decoded, len(coords))

	for i := range coords {
		assert.InDelta(t, coords[i].Lat, decoded[i].Lat, 1e-6)
		assert.InDelta(t, coords[i].Lon, decoded[i].Lon, 1e-6)
	}
}

func TestDecodePolyline6Empty(t *testing.T) {
	decoded, err := DecodePolyline6("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodePolyline6Truncated(t *testing.T) {
	valid := encodePolyline6([]routing.Point{{Lat: 45.4642, Lon: 9.19}})
	_, err := DecodePolyline6(valid[:len(valid)-1] + "\x7f")
	assert.Error(t, err)
}
