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

package staticmap

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

var testCoords = []routing.Point{
	{Lat: 45.4642, Lon: 9.19},
	{Lat: 45.47, Lon: 9.2},
	{Lat: 45.48, Lon: 9.21},
}

func TestRenderWithStadiaToken(t *testing.T) {
	client := NewClient("https://stadia.test/static", "https://osm.test/staticmap.php", "stadia-token")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://stadia.test/static",
		func(req *http.Request) (*http.Response, error) {
			query := req.URL.Query()
			assert.Equal(t, "stadia-token", query.Get("api_key"))
			assert.Contains(t, query.Get("path"), "color:red|weight:3|")
			assert.NotEmpty(t, query.Get("markers"))

			return httpmock.NewBytesResponse(200, []byte("png-bytes")), nil
		})

	png, err := client.Render(context.Background(), testCoords, testCoords[:1])
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), png)

	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["GET https://osm.test/staticmap.php"])
}

func TestRenderFallsBackToOSM(t *testing.T) {
	client := NewClient("https://stadia.test/static", "https://osm.test/staticmap.php", "stadia-token")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://stadia.test/static",
		httpmock.NewStringResponder(402, "payment required"))
	httpmock.RegisterResponder("GET", "https://osm.test/staticmap.php",
		httpmock.NewBytesResponder(200, []byte("osm-png")))

	png, err := client.Render(context.Background(), testCoords, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("osm-png"), png)
}

func TestRenderWithoutTokenSkipsStadia(t *testing.T) {
	client := NewClient("https://stadia.test/static", "https://osm.test/staticmap.php", "")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://osm.test/staticmap.php",
		httpmock.NewBytesResponder(200, []byte("osm-png")))

	png, err := client.Render(context.Background(), testCoords, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("osm-png"), png)

	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["GET https://stadia.test/static"])
}

func TestRenderUnavailable(t *testing.T) {
	client := NewClient("https://stadia.test/static", "https://osm.test/staticmap.php", "")

	httpmock.ActivateNonDefault(client.HTTPClient().GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://osm.test/staticmap.php",
		httpmock.NewStringResponder(503, "down"))

	_, err := client.Render(context.Background(), testCoords, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
