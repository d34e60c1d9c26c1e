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
	"fmt"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

// DecodePolyline6 decodes a Valhalla shape string, which uses the Google
// encoded polyline algorithm at 1e-6 degree precision.
func DecodePolyline6(shape string) ([]routing.Point, error) {
	var coords []routing.Point
	var lat, lon int64
	index := 0

	for index < len(shape) {
		dLat, next, err := decodeValue(shape, index)
		if err != nil {
			return nil, err
		}
		dLon, after, err := decodeValue(shape, next)
		if err != nil {
			return nil, err
		}
		index = after

		lat += dLat
		lon += dLon
		coords = append(coords, routing.Point{
			Lat: float64(lat) / 1e6,
			Lon: float64(lon) / 1e6,
		})
	}

	return coords, nil
}

func decodeValue(shape string, index int) (int64, int, error) {
	var result int64
	var shift uint

	for {
		if index >= len(shape) {
			return 0, 0, fmt.Errorf("truncated polyline shape at offset %d", index)
		}
		b := int64(shape[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}
