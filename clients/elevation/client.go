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

// Package elevation looks up terrain elevation for track points, primarily
// against OpenTopoData (EU-DEM 25m dataset) with Open-Elevation as fallback.
// Both expose the same locations/results wire format.
package elevation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

const (
	DefaultPrimaryURL  = "https://api.opentopodata.org/v1/eudem25m"
	DefaultFallbackURL = "https://api.open-elevation.com/api/v1/lookup"
)

const (
	lookupTimeout = 10 * time.Second
	batchSize     = 100
)

type lookupResponse struct {
	Results []struct {
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

type Client struct {
	http        *resty.Client
	primaryURL  string
	fallbackURL string
	userAgent   string
}

func NewClient(primaryURL, fallbackURL, userAgent string) *Client {
	if primaryURL == "" {
		primaryURL = DefaultPrimaryURL
	}
	if fallbackURL == "" {
		fallbackURL = DefaultFallbackURL
	}

	return &Client{
		http:        resty.New(),
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		userAgent:   userAgent,
	}
}

func (c *Client) HTTPClient() *resty.Client {
	return c.http
}

// Elevations resolves one elevation per input point, nil where the provider
// had no data. The fallback provider is only consulted when the primary
// produced nothing at all.
func (c *Client) Elevations(ctx context.Context, points []routing.Point) []*float64 {
	elevations := c.lookup(ctx, c.primaryURL, points)
	if allNil(elevations) {
		elevations = c.lookup(ctx, c.fallbackURL, points)
	}
	return elevations
}

func (c *Client) lookup(ctx context.Context, url string, points []routing.Point) []*float64 {
	out := make([]*float64, 0, len(points))

	for offset := 0; offset < len(points); offset += batchSize {
		end := offset + batchSize
		if end > len(points) {
			end = len(points)
		}
		chunk := points[offset:end]

		elevations, err := c.lookupBatch(ctx, url, chunk)
		if err != nil {
			log.WithField("url", url).WithField("error", err).Debug("elevation batch failed")
			out = append(out, make([]*float64, len(chunk))...)
			continue
		}
		out = append(out, elevations...)
	}

	return out
}

func (c *Client) lookupBatch(ctx context.Context, url string, chunk []routing.Point) ([]*float64, error) {
	locations := make([]string, len(chunk))
	for i, p := range chunk {
		locations[i] = fmt.Sprintf("%f,%f", p.Lat, p.Lon)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	result := lookupResponse{}
	resp, err := c.http.R().
		SetContext(lookupCtx).
		SetQueryParam("locations", strings.Join(locations, "|")).
		SetHeader("User-Agent", c.userAgent).
		SetResult(&result).
		Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("elevation lookup refused: [%d]", resp.StatusCode())
	}

	elevations := make([]*float64, 0, len(chunk))
	for _, r := range result.Results {
		elevations = append(elevations, r.Elevation)
	}
	for len(elevations) < len(chunk) {
		elevations = append(elevations, nil)
	}
	return elevations, nil
}

func allNil(elevations []*float64) bool {
	for _, e := range elevations {
		if e != nil {
			return false
		}
	}
	return true
}
