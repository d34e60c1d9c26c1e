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

package elevation

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

func makePoints(n int) []routing.Point {
	points := make([]routing.Point, n)
	for i := range points {
		points[i] = routing.Point{Lat: 45.0 + float64(i)*0.001, Lon: 9.0}
	}
	return points
}

func elevationResponder(value float64) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		locations := strings.Split(req.URL.Query().Get("locations"), "|")
		results := make([]map[string]interface{}, len(locations))
		for i := range locations {
			results[i] = map[string]interface{}{"elevation": value}
		}
		return httpmock.NewJsonResponse(200, map[string]interface{}{"results": results})
	}
}

func TestElevationsBatches(t *testing.T) {
	client := NewClient("https://primary.test/lookup", "https://fallback.test/lookup", "test-agent/1.0")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://primary.test/lookup", elevationResponder(1200.0))

	// 250 points means three batches of at most 100
	elevations := client.Elevations(context.Background(), makePoints(250))
	require.Len(t, elevations, 250)
	for _, e := range elevations {
		require.NotNil(t, e)
		assert.Equal(t, 1200.0, *e)
	}

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 3, info["GET https://primary.test/lookup"])
}

func TestElevationsFallbackWhenPrimaryEmpty(t *testing.T) {
	client := NewClient("https://primary.test/lookup", "https://fallback.test/lookup", "test-agent/1.0")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://primary.test/lookup",
		httpmock.NewStringResponder(500, "boom"))
	httpmock.RegisterResponder("GET", "https://fallback.test/lookup", elevationResponder(800.0))

	elevations := client.Elevations(context.Background(), makePoints(10))
	require.Len(t, elevations, 10)
	for _, e := range elevations {
		require.NotNil(t, e)
		assert.Equal(t, 800.0, *e)
	}
}

func TestElevationsPartialPrimaryIsKept(t *testing.T) {
	client := NewClient("https://primary.test/lookup", "https://fallback.test/lookup", "test-agent/1.0")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	// The primary answers with data, so the fallback must not be consulted
	// even though some entries are missing.
	httpmock.RegisterResponder("GET", "https://primary.test/lookup",
		func(req *http.Request) (*http.Response, error) {
			locations := strings.Split(req.URL.Query().Get("locations"), "|")
			results := make([]map[string]interface{}, len(locations))
			for i := range locations {
				if i == 0 {
					results[i] = map[string]interface{}{"elevation": nil}
				} else {
					results[i] = map[string]interface{}{"elevation": 950.0}
				}
			}
			return httpmock.NewJsonResponse(200, map[string]interface{}{"results": results})
		})

	elevations := client.Elevations(context.Background(), makePoints(5))
	require.Len(t, elevations, 5)
	assert.Nil(t, elevations[0])
	for _, e := range elevations[1:] {
		require.NotNil(t, e)
		assert.Equal(t, 950.0, *e)
	}

	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["GET https://fallback.test/lookup"])
}

func TestElevationsBothProvidersDown(t *testing.T) {
	client := NewClient("https://primary.test/lookup", "https://fallback.test/lookup", "test-agent/1.0")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://primary.test/lookup",
		httpmock.NewStringResponder(500, "boom"))
	httpmock.RegisterResponder("GET", "https://fallback.test/lookup",
		httpmock.NewStringResponder(500, "boom"))

	elevations := client.Elevations(context.Background(), makePoints(4))
	require.Len(t, elevations, 4)
	for _, e := range elevations {
		assert.Nil(t, e)
	}
}
