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
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLocations = []Location{
	{Lat: 45.4642, Lon: 9.19, Type: "break"},
	{Lat: 44.4949, Lon: 11.3426, Type: "break"},
}

func TestRoute(t *testing.T) {
	client := NewClient("http://valhalla.test", "")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://valhalla.test/route",
		func(req *http.Request) (*http.Response, error) {
			body := routeRequest{}
			err := json.NewDecoder(req.Body).Decode(&body)
			require.NoError(t, err)

			assert.Equal(t, "motorcycle", body.Costing)
			assert.Len(t, body.Locations, 2)
			motorcycle := body.CostingOptions["motorcycle"].(map[string]interface{})
			assert.Equal(t, 0.2, motorcycle["use_highways"])

			return httpmock.NewJsonResponse(200, map[string]interface{}{
				"trip": map[string]interface{}{
					"legs":    []map[string]interface{}{},
					"summary": map[string]interface{}{"length": 98.5, "time": 7230.0},
				},
			})
		})

	trip, err := client.Route(context.Background(), testLocations, StyleCurvy)
	require.NoError(t, err)
	assert.Equal(t, 98.5, trip.Summary.Length)
	assert.Equal(t, 7230.0, trip.Summary.Time)
}

func TestRouteFallback(t *testing.T) {
	client := NewClient("http://primary.test", "http://fallback.test")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://primary.test/route",
		httpmock.NewStringResponder(500, "internal error"))
	httpmock.RegisterResponder("POST", "http://fallback.test/route",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"trip": map[string]interface{}{
				"summary": map[string]interface{}{"length": 42.0, "time": 3600.0},
			},
		}))

	trip, err := client.Route(context.Background(), testLocations, StyleRapido)
	require.NoError(t, err)
	assert.Equal(t, 42.0, trip.Summary.Length)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["POST http://primary.test/route"])
	assert.Equal(t, 1, info["POST http://fallback.test/route"])
}

func TestRouteAllInstancesFail(t *testing.T) {
	client := NewClient("http://primary.test", "http://fallback.test")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://primary.test/route",
		httpmock.NewStringResponder(400, "no route found"))
	httpmock.RegisterResponder("POST", "http://fallback.test/route",
		httpmock.NewStringResponder(400, "no route found"))

	_, err := client.Route(context.Background(), testLocations, StyleRapido)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestRouteNoURLConfigured(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Route(context.Background(), testLocations, StyleRapido)
	assert.Error(t, err)
}
