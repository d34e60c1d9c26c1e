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

// Package staticmap renders a PNG preview of a route, through the Stadia
// Maps static API when a token is configured and the OSM staticmap service
// otherwise.
package staticmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

const (
	DefaultStadiaURL = "https://tiles.stadiamaps.com/static"
	DefaultOSMURL    = "https://staticmap.openstreetmap.de/staticmap.php"
)

const (
	downloadTimeout = 20 * time.Second
	subsampleStep   = 20
	maxPathPoints   = 300
)

// ErrUnavailable is returned when no provider produced an image.
var ErrUnavailable = errors.New("no static map provider available")

type Client struct {
	http        *resty.Client
	stadiaURL   string
	osmURL      string
	stadiaToken string
}

func NewClient(stadiaURL, osmURL, stadiaToken string) *Client {
	if stadiaURL == "" {
		stadiaURL = DefaultStadiaURL
	}
	if osmURL == "" {
		osmURL = DefaultOSMURL
	}

	return &Client{
		http:        resty.New(),
		stadiaURL:   stadiaURL,
		osmURL:      osmURL,
		stadiaToken: stadiaToken,
	}
}

func (c *Client) HTTPClient() *resty.Client {
	return c.http
}

// Render downloads a PNG of the route path with the given markers. The path
// is subsampled to keep the URL within providers' limits.
func (c *Client) Render(ctx context.Context, coords []routing.Point, markers []routing.Point) ([]byte, error) {
	path := routing.Subsample(coords, subsampleStep, maxPathPoints)

	if c.stadiaToken != "" {
		png, err := c.download(ctx, c.stadiaURL, c.stadiaParams(path, markers))
		if err == nil {
			return png, nil
		}
		log.WithField("error", err).Debug("stadia static map failed, falling back to OSM")
	}

	png, err := c.download(ctx, c.osmURL, c.osmParams(path, markers))
	if err != nil {
		return nil, ErrUnavailable
	}
	return png, nil
}

func (c *Client) stadiaParams(path []routing.Point, markers []routing.Point) map[string]string {
	params := map[string]string{
		"api_key": c.stadiaToken,
		"zoom":    "12",
		"size":    "800x800",
	}
	if len(path) > 0 {
		params["path"] = "color:red|weight:3|" + joinPoints(path)
	}
	if len(markers) > 0 {
		params["markers"] = "color:blue|" + joinPoints(markers)
	}
	return params
}

func (c *Client) osmParams(path []routing.Point, markers []routing.Point) map[string]string {
	params := map[string]string{
		"size": "800x800",
	}
	if len(path) > 0 {
		params["path"] = "color:red|weight:3|" + joinPoints(path)
	}
	if len(markers) > 0 {
		params["markers"] = joinPoints(markers)
	}
	return params
}

func (c *Client) download(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(downloadCtx).
		SetQueryParams(params).
		Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("static map refused: [%d]", resp.StatusCode())
	}
	return resp.Body(), nil
}

func joinPoints(points []routing.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%f,%f", p.Lat, p.Lon)
	}
	return strings.Join(parts, "|")
}
