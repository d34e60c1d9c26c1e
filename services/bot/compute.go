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

package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/valloteo/valhalla-telegram-bot/clients/valhalla"
	"github.com/valloteo/valhalla-telegram-bot/gpxbuild"
	"github.com/valloteo/valhalla-telegram-bot/routing"
)

// elevationHysteresisM filters GPS-grade elevation noise out of the total
// gain/loss figures.
const elevationHysteresisM = 0.5

const timestampLayout = "02/01/2006 15:04"

// delivery is a fully rendered route, ready to be sent to the user.
type delivery struct {
	GPXTurns  []byte
	GPXSimple []byte
	MapPNG    []byte // nil when no static map backend answered
	Summary   string
}

// routeResult is a routed and decoded trip.
type routeResult struct {
	Coords    []routing.Point
	Maneuvers []routing.Maneuver
	LengthKm  float64
	TimeSec   float64
	Style     valhalla.Style
}

// computeRoute turns the collected session state into a routed trip, reduces
// it when it busts the length limit, and delivers the GPX files.
func (p *Processor) computeRoute(ctx context.Context, userID, chatID int64) {
	st := p.sessions.Get(userID)
	if st.Start == nil || (!st.Roundtrip && st.End == nil) {
		p.send(ctx, chatID, msgInvalidInput, cancelRestartKeyboard())
		return
	}

	if !st.Roundtrip {
		if routing.HaversineKm(*st.Start, *st.End) > maxRadiusKm {
			p.send(ctx, chatID, msgLimitsExceeded, nil)
			p.sessions.Reset(userID)
			return
		}
		approx := routing.ApproxTotalKm(p.standardPoints(st), false)
		if approx > maxRouteKm {
			p.send(ctx, chatID, msgLimitsExceeded, nil)
			p.sessions.Reset(userID)
			return
		}
	}

	p.send(ctx, chatID, msgProcessing, nil)

	result, err := p.route(ctx, st)
	if err != nil {
		p.reportRouteError(ctx, chatID, err)
		p.sessions.Reset(userID)
		return
	}

	if result.LengthKm <= maxRouteKm {
		deliverable, err := p.buildDelivery(ctx, result, st)
		if err != nil {
			p.reportRouteError(ctx, chatID, err)
			p.sessions.Reset(userID)
			return
		}
		p.deliver(ctx, userID, chatID, deliverable)
		return
	}

	log.WithField("user_id", userID).
		WithField("length_km", result.LengthKm).
		Info("route over limit, trying reduction")

	var reduced *routeResult
	if st.Roundtrip {
		reduced = p.tryReduceRoundTrip(ctx, st)
	} else {
		reduced = p.tryReduceStandard(ctx, st)
	}
	if reduced == nil {
		p.send(ctx, chatID, msgReduceFailed, nil)
		p.sessions.Reset(userID)
		return
	}

	deliverable, err := p.buildDelivery(ctx, reduced, st)
	if err != nil {
		p.reportRouteError(ctx, chatID, err)
		p.sessions.Reset(userID)
		return
	}
	st.PendingDelivery = deliverable
	p.send(ctx, chatID,
		fmt.Sprintf(
			"⚠️ Il percorso superava i %d km. Ho preparato una versione ridotta di %.1f km. La vuoi?",
			maxRouteKm, reduced.LengthKm),
		reduceConfirmKeyboard())
}

// standardPoints is the ordered location list of a standard route.
func (p *Processor) standardPoints(st *session) []routing.Point {
	points := make([]routing.Point, 0, len(st.WaypointsStd)+2)
	points = append(points, *st.Start)
	points = append(points, st.WaypointsStd...)
	points = append(points, *st.End)
	return points
}

// roundTripPoints closes the loop on the start point, filling the waypoint
// slots the user left empty.
func (p *Processor) roundTripPoints(st *session) []routing.Point {
	waypoints := routing.DistributeRoundTripWaypoints(
		*st.Start, st.Direction, st.WaypointsRT, rtTotalWaypointTarget, st.RTRadiusKm)
	points := make([]routing.Point, 0, len(waypoints)+2)
	points = append(points, *st.Start)
	points = append(points, waypoints...)
	points = append(points, *st.Start)
	return points
}

func (p *Processor) route(ctx context.Context, st *session) (*routeResult, error) {
	var points []routing.Point
	if st.Roundtrip {
		points = p.roundTripPoints(st)
	} else {
		points = p.standardPoints(st)
	}

	locations := make([]valhalla.Location, len(points))
	for i, point := range points {
		locations[i] = valhalla.Location{Lat: point.Lat, Lon: point.Lon, Type: "break"}
	}

	trip, err := p.router.Route(ctx, locations, st.Style)
	if err != nil {
		return nil, err
	}

	coords, maneuvers, err := trip.ExtractShape()
	if err != nil {
		return nil, err
	}
	coords = routing.EnsureClosedLoop(coords, *st.Start, st.Roundtrip)

	return &routeResult{
		Coords:    coords,
		Maneuvers: maneuvers,
		LengthKm:  trip.Summary.Length,
		TimeSec:   trip.Summary.Time,
		Style:     st.Style,
	}, nil
}

// tryReduceStandard shortens an over-limit standard route. Waypoints go first,
// worst detour first; once none are left the riding style steps down towards
// the fastest one.
func (p *Processor) tryReduceStandard(ctx context.Context, st *session) *routeResult {
	for try := 0; try < reduceMaxTries; try++ {
		if len(st.WaypointsStd) > 0 {
			st.WaypointsStd = dropWorstDetour(*st.Start, *st.End, st.WaypointsStd)
		} else {
			next := st.Style.StepDown()
			if next == st.Style {
				return nil
			}
			st.Style = next
		}

		result, err := p.route(ctx, st)
		if err != nil {
			// Keep reducing, the next attempt may route.
			log.WithField("error", err).Warn("reduction attempt failed to route")
			continue
		}
		if result.LengthKm <= maxRouteKm {
			return result
		}
	}
	return nil
}

// tryReduceRoundTrip shrinks the loop radius, and from the second attempt on
// also steps the style down.
func (p *Processor) tryReduceRoundTrip(ctx context.Context, st *session) *routeResult {
	for try := 0; try < reduceMaxTries; try++ {
		st.RTRadiusKm = math.Max(st.RTRadiusKm*0.85, rtMinRadiusKm)
		if try > 0 {
			st.Style = st.Style.StepDown()
		}

		result, err := p.route(ctx, st)
		if err != nil {
			// Keep shrinking, the next attempt may route.
			log.WithField("error", err).Warn("reduction attempt failed to route")
			continue
		}
		if result.LengthKm <= maxRouteKm {
			return result
		}
	}
	return nil
}

// dropWorstDetour removes the waypoint whose detour over the direct start to
// end line is the largest.
func dropWorstDetour(start, end routing.Point, waypoints []routing.Point) []routing.Point {
	direct := routing.HaversineKm(start, end)
	worst := 0
	worstDetour := -1.0
	for i, w := range waypoints {
		detour := routing.HaversineKm(start, w) + routing.HaversineKm(w, end) - direct
		if detour > worstDetour {
			worstDetour = detour
			worst = i
		}
	}
	return append(waypoints[:worst:worst], waypoints[worst+1:]...)
}

// buildDelivery renders the GPX files, the static map and the text summary
// for a routed trip.
func (p *Processor) buildDelivery(ctx context.Context, result *routeResult, st *session) (*delivery, error) {
	elevations := p.lookupElevations(ctx, result.Coords)

	gpxTurns, err := gpxbuild.Track(result.Coords, elevations, result.Maneuvers, gpxbuild.TrackNameTurns)
	if err != nil {
		return nil, err
	}
	gpxSimple, err := gpxbuild.Track(result.Coords, elevations, nil, gpxbuild.TrackNameSimple)
	if err != nil {
		return nil, err
	}

	mapPNG, err := p.maps.Render(ctx, result.Coords, p.routeMarkers(st))
	if err != nil {
		log.WithField("error", err).Warn("static map rendering failed")
		mapPNG = nil
	}

	return &delivery{
		GPXTurns:  gpxTurns,
		GPXSimple: gpxSimple,
		MapPNG:    mapPNG,
		Summary:   p.summaryText(result, elevations, st),
	}, nil
}

// routeMarkers lists the user-meaningful points of the route: the start, the
// waypoints, and for a standard route the destination.
func (p *Processor) routeMarkers(st *session) []routing.Point {
	if st.Roundtrip {
		points := p.roundTripPoints(st)
		return points[:len(points)-1]
	}
	return p.standardPoints(st)
}

// lookupElevations samples the shape every elevationSampleM meters, queries
// the elevation services on the samples, and spreads the answers back over
// the full shape.
func (p *Processor) lookupElevations(ctx context.Context, coords []routing.Point) []*float64 {
	if !p.elevationEnabled || len(coords) == 0 {
		return make([]*float64, len(coords))
	}

	sampled := routing.SampleAlong(coords, elevationSampleM)
	sampledElevations := p.elevations.Elevations(ctx, sampled)

	full := make([]*float64, len(coords))
	cumulative := 0.0
	for i := range coords {
		if i > 0 {
			cumulative += routing.HaversineKm(coords[i-1], coords[i]) * 1000.0
		}
		idx := int(cumulative / elevationSampleM)
		if idx >= len(sampledElevations) {
			idx = len(sampledElevations) - 1
		}
		if idx >= 0 {
			full[i] = sampledElevations[idx]
		}
	}
	return full
}

func (p *Processor) summaryText(result *routeResult, elevations []*float64, st *session) string {
	typeLine := "Standard"
	waypointCount := len(st.WaypointsStd)
	limitsLine := fmt.Sprintf("Limiti attivi: max %d km, max %d waypoint", maxRouteKm, maxWaypointsStandard)
	if st.Roundtrip {
		typeLine = "Round Trip"
		if st.Direction != "" && st.Direction != "skip" {
			typeLine += fmt.Sprintf(" (direzione: %s)", st.Direction)
		}
		waypointCount = rtTotalWaypointTarget
		limitsLine = fmt.Sprintf(
			"Limiti attivi: max %d km, max %d waypoint manuali (RT)", maxRouteKm, maxWaypointsRoundTrip)
	}

	summary := fmt.Sprintf(
		"✅ *Percorso pronto*\n"+
			"• Tipo: %s\n"+
			"• Stile: %s\n"+
			"• Distanza: ~%.1f km\n"+
			"• Tempo stimato: %s\n",
		typeLine, result.Style, result.LengthKm, formatDuration(result.TimeSec))

	if profile, ok := elevationProfile(elevations); ok {
		summary += fmt.Sprintf(
			"• Dislivello: +%.0f m / -%.0f m (min %.0f m, max %.0f m)\n",
			profile.GainM, profile.LossM, profile.MinM, profile.MaxM)
	}

	summary += fmt.Sprintf("• Waypoint: %d\n", waypointCount)
	summary += fmt.Sprintf("• Generato: %s\n", p.now().Format(timestampLayout))
	summary += limitsLine
	return summary
}

type elevationStats struct {
	GainM float64
	LossM float64
	MinM  float64
	MaxM  float64
}

// elevationProfile aggregates the climb figures, ignoring swings smaller than
// the hysteresis threshold.
func elevationProfile(elevations []*float64) (elevationStats, bool) {
	var stats elevationStats
	var last *float64
	seen := false

	for _, e := range elevations {
		if e == nil {
			continue
		}
		if !seen {
			stats.MinM, stats.MaxM = *e, *e
			seen = true
		} else {
			stats.MinM = math.Min(stats.MinM, *e)
			stats.MaxM = math.Max(stats.MaxM, *e)
		}
		if last != nil {
			delta := *e - *last
			if delta > elevationHysteresisM {
				stats.GainM += delta
			} else if delta < -elevationHysteresisM {
				stats.LossM += -delta
			}
		}
		last = e
	}
	return stats, seen
}

func formatDuration(seconds float64) string {
	total := int(math.Round(seconds / 60.0))
	hours := total / 60
	minutes := total % 60
	if hours > 0 {
		return fmt.Sprintf("~%dh%02dm", hours, minutes)
	}
	return fmt.Sprintf("~%dm", minutes)
}

// deliver checks the rate limit and ships the GPX files, the map preview and
// the summary. The owner is exempt from the rate limit.
func (p *Processor) deliver(ctx context.Context, userID, chatID int64, deliverable *delivery) {
	if userID != p.ownerID {
		last, found, err := p.backend.LastDelivery(userID)
		if err != nil {
			log.WithField("user_id", userID).WithField("error", err).Error("unable to read last delivery")
			p.send(ctx, chatID, msgRoutingError, nil)
			return
		}
		if found {
			unlock := last.Add(rateLimitDays * 24 * time.Hour)
			if p.now().Before(unlock) {
				p.send(ctx, chatID,
					fmt.Sprintf("⏳ Hai già scaricato un percorso di recente.\nPuoi riprovare dopo: *%s*",
						unlock.Format(timestampLayout)),
					nil)
				p.sessions.Reset(userID)
				return
			}
		}
	}

	if err := p.tg.SendDocument(ctx, chatID,
		"route_turns.gpx", deliverable.GPXTurns,
		"📄 GPX con manovre"); err != nil {
		log.WithField("error", err).Error("unable to send GPX document")
		p.send(ctx, chatID, msgRoutingError, nil)
		return
	}
	if err := p.tg.SendDocument(ctx, chatID,
		"route_track.gpx", deliverable.GPXSimple,
		"📄 GPX semplice (solo traccia)"); err != nil {
		log.WithField("error", err).Error("unable to send simple GPX document")
	}

	if deliverable.MapPNG != nil {
		if err := p.tg.SendPhoto(ctx, chatID, deliverable.MapPNG, "Anteprima del percorso"); err != nil {
			log.WithField("error", err).Warn("unable to send map preview")
		}
	} else {
		p.send(ctx, chatID, msgMapMissing, nil)
	}

	p.send(ctx, chatID, deliverable.Summary, nil)

	if userID != p.ownerID {
		if err := p.backend.RecordDelivery(userID, p.now()); err != nil {
			log.WithField("user_id", userID).WithField("error", err).Error("unable to record delivery")
		}
	}
	p.sessions.Reset(userID)
}

func (p *Processor) reportRouteError(ctx context.Context, chatID int64, err error) {
	if errors.Is(err, valhalla.ErrEmptyShape) {
		p.send(ctx, chatID, msgShapeError, nil)
		return
	}
	log.WithField("error", err).Error("route computation failed")
	p.send(ctx, chatID, msgRoutingError, nil)
}
