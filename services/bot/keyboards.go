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
	"fmt"

	"github.com/valloteo/valhalla-telegram-bot/clients/telegram"
	"github.com/valloteo/valhalla-telegram-bot/routing"
)

func button(text, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: data}
}

func row(buttons ...telegram.InlineKeyboardButton) []telegram.InlineKeyboardButton {
	return buttons
}

func keyboard(rows ...[]telegram.InlineKeyboardButton) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

var cancelRestartRows = [][]telegram.InlineKeyboardButton{
	row(button("❌ Annulla", "action:cancel")),
	row(button("🔄 Ricomincia", "action:restart")),
}

func cancelRestartKeyboard() *telegram.InlineKeyboardMarkup {
	return keyboard(cancelRestartRows...)
}

func mainMenuKeyboard() *telegram.InlineKeyboardMarkup {
	return keyboard(append([][]telegram.InlineKeyboardButton{
		row(button("🧭 Percorso standard", "mode:standard")),
		row(button("🔁 Round Trip", "mode:roundtrip")),
	}, cancelRestartRows...)...)
}

func directionKeyboard() *telegram.InlineKeyboardMarkup {
	codes := routing.DirectionCodes()
	rows := [][]telegram.InlineKeyboardButton{}
	for i := 0; i < len(codes); i += 4 {
		chunk := codes[i:]
		if len(chunk) > 4 {
			chunk = chunk[:4]
		}
		buttons := []telegram.InlineKeyboardButton{}
		for _, code := range chunk {
			buttons = append(buttons, button(code, "dir:"+code))
		}
		rows = append(rows, buttons)
	}
	rows = append(rows, row(button("🎲 Lascia decidere al bot", "dir:skip")))
	rows = append(rows, cancelRestartRows...)
	return keyboard(rows...)
}

func waypointsStdKeyboard() *telegram.InlineKeyboardMarkup {
	return keyboard(append([][]telegram.InlineKeyboardButton{
		row(button("➕ Aggiungi waypoint", "action:add_wp_std")),
		row(button("✅ Fine", "action:finish_waypoints_std")),
	}, cancelRestartRows...)...)
}

func waypointsRTKeyboard() *telegram.InlineKeyboardMarkup {
	return keyboard(append([][]telegram.InlineKeyboardButton{
		row(button("➕ Aggiungi waypoint (RT)", "action:add_wp_rt")),
		row(button("✅ Fine", "action:finish_waypoints_rt")),
	}, cancelRestartRows...)...)
}

func styleKeyboard() *telegram.InlineKeyboardMarkup {
	return keyboard(append([][]telegram.InlineKeyboardButton{
		row(
			button("⚡ Rapido", "style:rapido"),
			button("🌀 Curvy leggero", "style:curvy_light"),
		),
		row(
			button("🧷 Curvy", "style:curvy"),
			button("⭐ Super curvy", "style:super_curvy"),
			button("🔥 Extreme (premium)", "style:extreme"),
		),
	}, cancelRestartRows...)...)
}

func reduceConfirmKeyboard() *telegram.InlineKeyboardMarkup {
	return keyboard(append([][]telegram.InlineKeyboardButton{
		row(button("✅ Accetto versione ridotta", "reduce:accept")),
		row(button("❌ Rifiuto", "reduce:reject")),
	}, cancelRestartRows...)...)
}

func adminRequestKeyboard(userID int64, username string) *telegram.InlineKeyboardMarkup {
	return keyboard(
		row(button(fmt.Sprintf("✔️ Approva %s", username), fmt.Sprintf("admin:approve:%d", userID))),
		row(button(fmt.Sprintf("❌ Rifiuta %s", username), fmt.Sprintf("admin:deny:%d", userID))),
	)
}

func geoSuggestionsKeyboard(names []string) *telegram.InlineKeyboardMarkup {
	rows := [][]telegram.InlineKeyboardButton{}
	for i, name := range names {
		if i >= 5 {
			break
		}
		label := name
		if len([]rune(label)) > 50 {
			label = string([]rune(label)[:50]) + "…"
		}
		rows = append(rows, row(button(fmt.Sprintf("%d. %s", i+1, label), fmt.Sprintf("geo_pick:%d", i))))
	}
	rows = append(rows, cancelRestartRows...)
	return keyboard(rows...)
}
