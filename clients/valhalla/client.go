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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const routeTimeout = 30 * time.Second

// ErrNoRoute is returned when no configured Valhalla instance produced a
// usable trip.
var ErrNoRoute = errors.New("no valhalla instance returned a route")

// Client routes against a primary Valhalla instance with an optional
// fallback tried when the primary fails.
type Client struct {
	http *resty.Client
	urls []string
}

func NewClient(primaryURL string, fallbackURL string) *Client {
	urls := []string{}
	if primaryURL != "" {
		urls = append(urls, strings.TrimRight(primaryURL, "/"))
	}
	if fallbackURL != "" {
		urls = append(urls, strings.TrimRight(fallbackURL, "/"))
	}

	return &Client{
		http: resty.New(),
		urls: urls,
	}
}

func (c *Client) HTTPClient() *resty.Client {
	return c.http
}

// Route requests a motorcycle route through the given break locations. Each
// configured instance is tried in order; the first 200 answer with a trip
// wins.
func (c *Client) Route(ctx context.Context, locations []Location, style Style) (*Trip, error) {
	if len(c.urls) == 0 {
		return nil, errors.New("no valhalla URL configured")
	}

	request := routeRequest{
		Locations: locations,
		Costing:   "motorcycle",
		CostingOptions: map[string]interface{}{
			"motorcycle": map[string]interface{}{
				"use_highways": style.UseHighways(),
				"use_tolls":    0.0,
				"shortest":     false,
			},
		},
		DirectionsOptions: map[string]interface{}{
			"units": "kilometers",
		},
	}

	routeCtx, cancel := context.WithTimeout(ctx, routeTimeout)
	defer cancel()

	for _, url := range c.urls {
		result := routeResponse{}
		resp, err := c.http.R().
			SetContext(routeCtx).
			SetBody(&request).
			SetResult(&result).
			Post(fmt.Sprintf("%s/route", url))
		if err != nil {
			log.WithField("url", url).WithField("error", err).Debug("valhalla request failed, trying next")
			continue
		}
		if resp.IsError() || result.Trip == nil {
			log.WithField("url", url).WithField("status", resp.StatusCode()).Debug("valhalla refused route, trying next")
			continue
		}
		return result.Trip, nil
	}

	return nil, ErrNoRoute
}
