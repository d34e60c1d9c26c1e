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

import "fmt"

// User-facing texts, in Italian like the audience of the bot.
var (
	msgWelcome = "🏍 *Benvenuto nel MotoRoute Bot!*\n\n" +
		"Cosa puoi fare:\n" +
		"• 🧭 *Percorso standard*: da A a B con waypoint opzionali.\n" +
		"• 🔁 *Round Trip*: un giro ad anello da A con direzione preferita.\n\n" +
		"⏳ _Se il bot non parte subito, attendi qualche minuto: il server potrebbe essere in avvio._"

	msgChooseMode    = "🧭 Scegli il *tipo di percorso*:"
	msgAskStart      = "📍 Invia il *punto di partenza*."
	msgAskEnd        = "🎯 Ora invia la *destinazione*."
	msgAskDirection  = "🧭 Scegli la *direzione* preferita per il Round Trip."
	msgAskStyle      = "🎨 Scegli lo *stile del percorso*."
	msgProcessing    = "⏳ Sto calcolando il percorso..."
	msgInvalidInput  = "⚠️ Non ho capito. Invia una *posizione* o un *indirizzo* valido."
	msgCancelled     = "❌ Operazione annullata."
	msgRestarted     = "🔄 Ricominciamo! Invia la *partenza*."
	msgNotAuthorized = "🔒 Non sei autorizzato. Ho inviato la *richiesta* all’admin."
	msgAccessGranted = "✅ Accesso approvato! Ora puoi usare il bot."
	msgAccessDenied  = "❌ La tua richiesta di accesso è stata rifiutata."
	msgRoutingError  = "❌ Errore Valhalla. Riprova più tardi."
	msgShapeError    = "❌ Errore nel percorso."
	msgMapMissing    = "⚠️ Mappa non disponibile al momento."

	msgAskWaypointsStd = fmt.Sprintf(
		"➕ Aggiungi waypoint (max *%d*) oppure premi *✅ Fine*.", maxWaypointsStandard)
	msgAskWaypointsRT = fmt.Sprintf(
		"➕ Aggiungi waypoint *Round Trip* (max *%d*). Quando hai finito premi *✅ Fine*.", maxWaypointsRoundTrip)
	msgLimitsExceeded = fmt.Sprintf(
		"🚫 Il percorso supera i limiti consentiti (max *%d km*).", maxRouteKm)
	msgWaypointTooFar = fmt.Sprintf(
		"⚠️ Waypoint troppo lontano dalla partenza (max ~%d km in linea d’aria).", maxRadiusKm)

	msgHowToPosition = "ℹ️ *Come inserire una posizione*\n" +
		"Puoi inviare:\n" +
		"• Un *indirizzo* (es. `Via Roma 10, Milano`)\n" +
		"• Delle *coordinate* `lat,lon` (es. `45.4642, 9.1900`)\n" +
		"• La *posizione* usando la graffetta 📎 di Telegram → *Posizione*\n\n" +
		"_Suggerimento_: aggiungi *città* e *provincia* per risultati migliori.\n"

	msgRephraseOrSuggest = "⚠️ Non ho trovato un indirizzo valido.\n" +
		"Riprova scrivendo *via + numero + città* (es. `Via Garibaldi 25, Como`).\n" +
		"Oppure invia direttamente la tua *posizione* 📍."

	msgChooseSuggestion = "🔎 Ho trovato questi risultati. Scegli quello giusto:"

	msgReduceFailed = "⚠️ Non riesco a rientrare nei limiti senza modifiche ulteriori. " +
		"Riduci i waypoint oppure scegli uno stile più rapido (⚡ Rapido / 🌀 Curvy leggero)."

	msgPremiumOnly = "Solo utenti premium possono usare Super curvy"
)
