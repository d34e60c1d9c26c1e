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

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/valloteo/valhalla-telegram-bot/launcher"
)

var launchQuietLevel int

// launchCmd runs a launch definition file: the setup steps in order, then
// the serve process in the foreground.
var launchCmd = &cobra.Command{
	Use:   "launch <filename> [args...]",
	Short: "Run the setup steps and the serve process of a launch definition file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return launcher.Launch(args, launchQuietLevel)
	},
}

func init() {
	launchCmd.Flags().CountVarP(
		&launchQuietLevel,
		"quiet",
		"q",
		"Quiet level, repeat to silence more of the launcher output",
	)
}
