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

// Style selects how strongly the motorcycle costing avoids highways. The
// twistier the style, the lower the use_highways factor.
type Style string

const (
	StyleRapido     Style = "rapido"
	StyleCurvyLight Style = "curvy_light"
	StyleCurvy      Style = "curvy"
	StyleSuperCurvy Style = "super_curvy"
	StyleExtreme    Style = "extreme"
)

// UseHighways returns the costing factor for the style. Unknown styles get
// the middle-of-the-road value.
func (s Style) UseHighways() float64 {
	switch s {
	case StyleRapido:
		return 0.9
	case StyleCurvyLight:
		return 0.5
	case StyleCurvy:
		return 0.2
	case StyleSuperCurvy:
		return 0.1
	case StyleExtreme:
		return 0.05
	default:
		return 0.5
	}
}

// Premium styles are reserved to the bot owner.
func (s Style) Premium() bool {
	return s == StyleSuperCurvy || s == StyleExtreme
}

// StepDown relaxes the style one notch towards faster roads, used by the
// automatic route reduction. Rapido has nowhere left to go.
func (s Style) StepDown() Style {
	switch s {
	case StyleCurvy:
		return StyleCurvyLight
	case StyleCurvyLight:
		return StyleRapido
	default:
		return s
	}
}

// ParseStyle validates a style code from a callback payload.
func ParseStyle(code string) (Style, bool) {
	switch Style(code) {
	case StyleRapido, StyleCurvyLight, StyleCurvy, StyleSuperCurvy, StyleExtreme:
		return Style(code), true
	}
	return "", false
}
