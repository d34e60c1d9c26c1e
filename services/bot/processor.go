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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valloteo/valhalla-telegram-bot/clients/elevation"
	"github.com/valloteo/valhalla-telegram-bot/clients/nominatim"
	"github.com/valloteo/valhalla-telegram-bot/clients/staticmap"
	"github.com/valloteo/valhalla-telegram-bot/clients/telegram"
	"github.com/valloteo/valhalla-telegram-bot/clients/valhalla"
	"github.com/valloteo/valhalla-telegram-bot/routing"
	"github.com/valloteo/valhalla-telegram-bot/services/bot/access"
)

// Route limits, matching the ones the bot advertises to its users.
const (
	maxWaypointsStandard  = 4
	maxWaypointsRoundTrip = 2 // manual ones; the rest are generated
	rtTotalWaypointTarget = 3
	maxRouteKm            = 120
	maxRadiusKm           = 80 // crow-line, start to destination
	rateLimitDays         = 7
	reduceMaxTries        = 3
	rtBaseRadiusKm        = 25.0
	rtMinRadiusKm         = 8.0
	elevationSampleM      = 50.0
	geocodeLimit          = 5
	geocodeCountryCodes   = "it"
)

// Processor drives the bot conversation: it consumes Telegram updates and
// talks back through the Bot API.
type Processor struct {
	ownerID          int64
	elevationEnabled bool

	tg         *telegram.Client
	router     *valhalla.Client
	geocoder   *nominatim.Client
	elevations *elevation.Client
	maps       *staticmap.Client
	backend    access.Backend

	sessions *sessionStore
	now      func() time.Time
}

type ProcessorConfig struct {
	OwnerID          int64
	AuthorizedUsers  []int64
	ElevationEnabled bool
}

func NewProcessor(
	config ProcessorConfig,
	tg *telegram.Client,
	router *valhalla.Client,
	geocoder *nominatim.Client,
	elevations *elevation.Client,
	maps *staticmap.Client,
	backend access.Backend,
) (*Processor, error) {
	for _, userID := range config.AuthorizedUsers {
		if err := backend.Authorize(userID); err != nil {
			return nil, fmt.Errorf("unable to seed authorized user %d: %w", userID, err)
		}
	}
	if config.OwnerID != 0 {
		if err := backend.Authorize(config.OwnerID); err != nil {
			return nil, fmt.Errorf("unable to seed owner %d: %w", config.OwnerID, err)
		}
	}

	return &Processor{
		ownerID:          config.OwnerID,
		elevationEnabled: config.ElevationEnabled,
		tg:               tg,
		router:           router,
		geocoder:         geocoder,
		elevations:       elevations,
		maps:             maps,
		backend:          backend,
		sessions:         newSessionStore(),
		now:              time.Now,
	}, nil
}

// HandleUpdate dispatches one incoming Telegram update.
func (p *Processor) HandleUpdate(ctx context.Context, update *telegram.Update) {
	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		if cq.Message == nil {
			log.WithField("callback_id", cq.ID).Debug("callback without message, ignored")
			return
		}
		lock := p.sessions.Lock(cq.From.ID)
		lock.Lock()
		defer lock.Unlock()
		p.handleCallback(ctx, cq.From.ID, cq.Message.Chat.ID, cq.ID, cq.Data)
		return
	}
	if update.Message != nil && update.Message.From != nil {
		lock := p.sessions.Lock(update.Message.From.ID)
		lock.Lock()
		defer lock.Unlock()
		p.handleMessage(ctx, update.Message.From.ID, update.Message.Chat.ID, update.Message)
	}
}

// send delivers a message and only logs failures: a broken outbound message
// must not take the webhook down.
func (p *Processor) send(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if err := p.tg.SendMessage(ctx, chatID, text, markup); err != nil {
		log.WithField("chat_id", chatID).WithField("error", err).Warn("unable to send message")
	}
}

func (p *Processor) answerCallback(ctx context.Context, callbackID string, text string) {
	if err := p.tg.AnswerCallbackQuery(ctx, callbackID, text); err != nil {
		log.WithField("error", err).Warn("unable to answer callback query")
	}
}

func (p *Processor) handleMessage(ctx context.Context, userID, chatID int64, msg *telegram.Message) {
	authorized, err := p.backend.IsAuthorized(userID)
	if err != nil {
		log.WithField("user_id", userID).WithField("error", err).Error("unable to check authorization")
		return
	}
	if !authorized {
		p.requestAccess(ctx, userID, chatID)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "/start" {
		p.sessions.Reset(userID)
		p.send(ctx, chatID, msgWelcome, nil)
		p.send(ctx, chatID, msgChooseMode, mainMenuKeyboard())
		return
	}

	st := p.sessions.Get(userID)
	switch st.Phase {
	case phaseChooseMode:
		p.send(ctx, chatID, msgChooseMode, mainMenuKeyboard())

	case phaseAwaitStart:
		p.expectLocation(ctx, chatID, st, msg, pickStart, cancelRestartKeyboard())

	case phaseAwaitEnd:
		p.expectLocation(ctx, chatID, st, msg, pickEnd, cancelRestartKeyboard())

	case phaseWaypointsStd, phaseAwaitWpStd:
		p.expectLocation(ctx, chatID, st, msg, pickWpStd, waypointsStdKeyboard())

	case phaseChooseDirection:
		p.send(ctx, chatID, msgAskDirection, directionKeyboard())

	case phaseWaypointsRT, phaseAwaitWpRT:
		p.expectLocation(ctx, chatID, st, msg, pickWpRT, waypointsRTKeyboard())

	case phaseChooseStyle:
		p.send(ctx, chatID, msgAskStyle, styleKeyboard())

	default:
		p.send(ctx, chatID, msgInvalidInput, cancelRestartKeyboard())
	}
}

// requestAccess marks the user pending and pings the owner the first time.
func (p *Processor) requestAccess(ctx context.Context, userID, chatID int64) {
	added, err := p.backend.MarkPending(userID)
	if err != nil {
		log.WithField("user_id", userID).WithField("error", err).Error("unable to mark user pending")
		return
	}
	if added && p.ownerID != 0 {
		p.send(ctx, p.ownerID,
			fmt.Sprintf("🔔 Richiesta accesso da %d", userID),
			adminRequestKeyboard(userID, fmt.Sprintf("user_%d", userID)))
	}
	p.send(ctx, chatID, msgNotAuthorized, nil)
}

// expectLocation parses a location out of msg and applies it to the slot the
// current phase is waiting for. Ambiguous addresses turn into a suggestion
// keyboard handled by the geo_pick callback.
func (p *Processor) expectLocation(
	ctx context.Context,
	chatID int64,
	st *session,
	msg *telegram.Message,
	target geoPickTarget,
	retryMarkup *telegram.InlineKeyboardMarkup,
) {
	point, candidates := p.parseLocation(ctx, msg)

	switch {
	case point != nil:
		p.applyLocation(ctx, chatID, st, target, *point, "")

	case len(candidates) > 0:
		st.GeoCandidates = candidates
		st.GeoPickTarget = target
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.DisplayName
		}
		p.send(ctx, chatID, msgChooseSuggestion, geoSuggestionsKeyboard(names))

	case strings.TrimSpace(msg.Text) != "" && msg.Location == nil:
		p.send(ctx, chatID, msgRephraseOrSuggest+"\n\n"+msgHowToPosition, retryMarkup)

	default:
		p.send(ctx, chatID, msgInvalidInput+"\n\n"+msgHowToPosition, retryMarkup)
	}
}

// parseLocation resolves a Telegram location, a "lat,lon" pair or a
// geocodable address. A single geocoding hit is used directly; multiple hits
// are returned as candidates for the user to choose from.
func (p *Processor) parseLocation(ctx context.Context, msg *telegram.Message) (*routing.Point, []nominatim.Candidate) {
	if msg.Location != nil {
		return &routing.Point{Lat: msg.Location.Latitude, Lon: msg.Location.Longitude}, nil
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil, nil
	}

	if point := parseCoordinatePair(text); point != nil {
		return point, nil
	}

	candidates, err := p.geocoder.Search(ctx, text, geocodeLimit, geocodeCountryCodes)
	if err != nil {
		log.WithField("error", err).Warn("geocoding failed")
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) == 1 {
		return &candidates[0].Point, nil
	}
	return nil, candidates
}

func parseCoordinatePair(text string) *routing.Point {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lonErr != nil {
		return nil
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil
	}
	return &routing.Point{Lat: lat, Lon: lon}
}

// applyLocation advances the conversation with a resolved point. The name is
// non-empty when the point came from a picked geocoding suggestion.
func (p *Processor) applyLocation(
	ctx context.Context,
	chatID int64,
	st *session,
	target geoPickTarget,
	point routing.Point,
	name string,
) {
	st.clearGeoPick()

	switch target {
	case pickStart:
		st.Start = &point
		if name != "" {
			p.send(ctx, chatID, fmt.Sprintf("✅ Partenza: %s", name), nil)
		}
		if st.Roundtrip {
			st.Phase = phaseChooseDirection
			p.send(ctx, chatID, msgAskDirection, directionKeyboard())
		} else {
			st.Phase = phaseAwaitEnd
			p.send(ctx, chatID, msgAskEnd+"\n\n"+msgHowToPosition, cancelRestartKeyboard())
		}

	case pickEnd:
		st.End = &point
		st.Phase = phaseWaypointsStd
		if name != "" {
			p.send(ctx, chatID, fmt.Sprintf("✅ Destinazione: %s", name), nil)
		}
		p.send(ctx, chatID, msgAskWaypointsStd+"\n\n"+msgHowToPosition, waypointsStdKeyboard())

	case pickWpStd:
		if len(st.WaypointsStd) >= maxWaypointsStandard {
			p.send(ctx, chatID, fmt.Sprintf("⚠️ Puoi aggiungere massimo %d waypoint.", maxWaypointsStandard), nil)
			return
		}
		st.WaypointsStd = append(st.WaypointsStd, point)
		st.Phase = phaseWaypointsStd
		if name != "" {
			p.send(ctx, chatID, fmt.Sprintf("✅ Waypoint aggiunto: %s", name), waypointsStdKeyboard())
			return
		}
		p.send(ctx, chatID, msgAskWaypointsStd+"\n\n"+msgHowToPosition, waypointsStdKeyboard())

	case pickWpRT:
		if st.Start != nil && routing.HaversineKm(*st.Start, point) > maxRadiusKm {
			p.send(ctx, chatID, msgWaypointTooFar, waypointsRTKeyboard())
			return
		}
		if len(st.WaypointsRT) >= maxWaypointsRoundTrip {
			p.send(ctx, chatID,
				fmt.Sprintf("⚠️ Puoi aggiungere massimo %d waypoint per il Round Trip.", maxWaypointsRoundTrip), nil)
			return
		}
		st.WaypointsRT = append(st.WaypointsRT, point)
		st.Phase = phaseWaypointsRT
		if name != "" {
			p.send(ctx, chatID, fmt.Sprintf("✅ Waypoint RT aggiunto: %s", name), waypointsRTKeyboard())
			return
		}
		p.send(ctx, chatID, msgAskWaypointsRT+"\n\n"+msgHowToPosition, waypointsRTKeyboard())
	}
}

func (p *Processor) handleCallback(ctx context.Context, userID, chatID int64, callbackID, data string) {
	st := p.sessions.Get(userID)
	st.LastCallbackID = callbackID

	switch {
	case strings.HasPrefix(data, "admin:"):
		p.handleAdminCallback(ctx, userID, callbackID, data)

	case data == "action:cancel":
		p.sessions.Reset(userID)
		p.send(ctx, chatID, msgCancelled, nil)

	case data == "action:restart":
		p.sessions.Reset(userID)
		p.send(ctx, chatID, msgRestarted, cancelRestartKeyboard())

	case strings.HasPrefix(data, "mode:"):
		mode := routeMode(strings.TrimPrefix(data, "mode:"))
		st.Mode = mode
		st.Roundtrip = mode == modeRoundTrip
		st.Phase = phaseAwaitStart
		p.send(ctx, chatID, msgAskStart+"\n\n"+msgHowToPosition, cancelRestartKeyboard())

	case data == "action:add_wp_std":
		st.Phase = phaseAwaitWpStd
		p.send(ctx, chatID, "📍 Invia il *waypoint* (posizione/indirizzo).\n\n"+msgHowToPosition, waypointsStdKeyboard())

	case data == "action:finish_waypoints_std":
		st.Phase = phaseChooseStyle
		p.send(ctx, chatID, msgAskStyle, styleKeyboard())

	case data == "action:add_wp_rt":
		st.Phase = phaseAwaitWpRT
		p.send(ctx, chatID, "📍 Invia il *waypoint Round Trip* (posizione/indirizzo).\n\n"+msgHowToPosition, waypointsRTKeyboard())

	case data == "action:finish_waypoints_rt":
		st.Phase = phaseChooseStyle
		p.send(ctx, chatID, msgAskStyle, styleKeyboard())

	case strings.HasPrefix(data, "dir:"):
		st.Direction = strings.TrimPrefix(data, "dir:")
		st.Phase = phaseWaypointsRT
		p.send(ctx, chatID, msgAskWaypointsRT+"\n\n"+msgHowToPosition, waypointsRTKeyboard())

	case strings.HasPrefix(data, "style:"):
		style, ok := valhalla.ParseStyle(strings.TrimPrefix(data, "style:"))
		if !ok {
			p.answerCallback(ctx, callbackID, "Stile non riconosciuto.")
			return
		}
		if style.Premium() && userID != p.ownerID {
			p.answerCallback(ctx, callbackID, msgPremiumOnly)
			return
		}
		st.Style = style
		p.answerCallback(ctx, callbackID, "Stile selezionato!")
		p.computeRoute(ctx, userID, chatID)

	case strings.HasPrefix(data, "geo_pick:"):
		p.handleGeoPick(ctx, chatID, st, callbackID, data)

	case data == "reduce:accept":
		if st.PendingDelivery == nil {
			p.answerCallback(ctx, callbackID, "Nessuna proposta in sospeso.")
			return
		}
		pending := st.PendingDelivery
		st.PendingDelivery = nil
		p.answerCallback(ctx, callbackID, "Versione ridotta accettata!")
		p.deliver(ctx, userID, chatID, pending)

	case data == "reduce:reject":
		p.sessions.Reset(userID)
		p.answerCallback(ctx, callbackID, "Versione ridotta rifiutata.")
		p.send(ctx, chatID, msgCancelled, nil)

	default:
		p.answerCallback(ctx, callbackID, "Comando non riconosciuto.")
	}
}

func (p *Processor) handleAdminCallback(ctx context.Context, userID int64, callbackID, data string) {
	if userID != p.ownerID {
		p.answerCallback(ctx, callbackID, "Non autorizzato.")
		return
	}

	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		p.answerCallback(ctx, callbackID, "Comando non riconosciuto.")
		return
	}
	target, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		p.answerCallback(ctx, callbackID, "Comando non riconosciuto.")
		return
	}

	switch parts[1] {
	case "approve":
		if err := p.backend.Authorize(target); err != nil {
			log.WithField("user_id", target).WithField("error", err).Error("unable to authorize user")
			p.answerCallback(ctx, callbackID, "Errore interno.")
			return
		}
		p.send(ctx, target, msgAccessGranted, nil)
		p.answerCallback(ctx, callbackID, "Utente approvato.")

	case "deny":
		if err := p.backend.ClearPending(target); err != nil {
			log.WithField("user_id", target).WithField("error", err).Error("unable to clear pending user")
		}
		p.send(ctx, target, msgAccessDenied, nil)
		p.answerCallback(ctx, callbackID, "Utente rifiutato.")

	default:
		p.answerCallback(ctx, callbackID, "Comando non riconosciuto.")
	}
}

func (p *Processor) handleGeoPick(ctx context.Context, chatID int64, st *session, callbackID, data string) {
	idx, err := strconv.Atoi(strings.TrimPrefix(data, "geo_pick:"))
	if err != nil {
		p.answerCallback(ctx, callbackID, "Selezione non valida.")
		return
	}
	if idx < 0 || idx >= len(st.GeoCandidates) {
		p.answerCallback(ctx, callbackID, "Suggerimento non disponibile.")
		return
	}
	if st.GeoPickTarget == "" {
		p.answerCallback(ctx, callbackID, "Fase non riconosciuta per la scelta.")
		return
	}

	candidate := st.GeoCandidates[idx]
	p.applyLocation(ctx, chatID, st, st.GeoPickTarget, candidate.Point, candidate.DisplayName)
}
