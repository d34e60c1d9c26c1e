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

// Package nominatim geocodes free-text queries through the OSM Nominatim
// search API. Requests carry a custom User-Agent, as its usage policy
// requires.
package nominatim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/valloteo/valhalla-telegram-bot/routing"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

const DefaultUserAgent = "valhalla-telegram-bot/1.0 (+https://github.com/valloteo/valhalla-telegram-bot)"

const searchTimeout = 10 * time.Second

// Candidate is one geocoding result, ordered by relevance.
type Candidate struct {
	Point       routing.Point
	DisplayName string
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type Client struct {
	http      *resty.Client
	userAgent string
}

func NewClient(baseURL string, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)

	return &Client{http: client, userAgent: userAgent}
}

func (c *Client) HTTPClient() *resty.Client {
	return c.http
}

// Search geocodes a query and returns up to limit candidates. Results with
// unparseable coordinates are skipped. An empty query yields no candidates.
func (c *Client) Search(ctx context.Context, query string, limit int, countryCodes string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	params := map[string]string{
		"q":               query,
		"format":          "json",
		"limit":           strconv.Itoa(limit),
		"accept-language": "it",
	}
	if countryCodes != "" {
		params["countrycodes"] = countryCodes
	}

	results := []searchResult{}
	resp, err := c.http.R().
		SetContext(searchCtx).
		SetQueryParams(params).
		SetHeader("User-Agent", c.userAgent).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("nominatim search failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nominatim search refused: [%d]", resp.StatusCode())
	}

	candidates := make([]Candidate, 0, len(results))
	for _, result := range results {
		lat, latErr := strconv.ParseFloat(result.Lat, 64)
		lon, lonErr := strconv.ParseFloat(result.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Point:       routing.Point{Lat: lat, Lon: lon},
			DisplayName: strings.TrimSpace(result.DisplayName),
		})
	}
	return candidates, nil
}
