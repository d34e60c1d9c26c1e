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

// Package launcher runs a YAML launch definition: ordered named setup steps
// followed by a single foreground serve process owning the lifecycle.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var errScriptCancelled = fmt.Errorf("script cancelled")

func runStep(ctx context.Context, step launchStep) error {
	logger := log.WithField("cmd", step.Name)

	select {
	case <-ctx.Done():
		logger.Debug("Cancelled")
		return errScriptCancelled
	default:
	}

	exe := executor{
		Ctx:           ctx,
		Folder:        step.Folder,
		Environment:   step.Environment,
		OutputEnabled: !step.Quiet,
	}

	for cmdIndex, cmdArgs := range step.Commands {
		cmdDesc := fmt.Sprintf("%s:(%d/%d)", step.Name, cmdIndex+1, len(step.Commands))

		err := exe.execute(cmdDesc, cmdArgs)
		if err != nil {
			return fmt.Errorf("step [%s] failed: %w", step.Name, err)
		}
	}

	logger.Trace("Completed")

	return nil
}

func launchFile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("required launch definition file missing")
	}
	filename := args[0]
	launchArgs := args[1:]

	definition, err := parseFile(filename, launchArgs)
	if err != nil {
		return err
	}

	// Steps run strictly in order; the first failure aborts the launch.
	for _, step := range definition.steps {
		if err := runStep(ctx, step); err != nil {
			return err
		}
	}

	return runStep(ctx, definition.serve)
}

// Launch only returns once the serve process has terminated. On an OS signal
// it terminates the running child process and blocks until it has completed.
func Launch(args []string, launcherQuietLevel int) error {
	configureLog(launcherQuietLevel)

	rootCtx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	// Setup signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		sig := <-sigs
		log.WithField("signal", fmt.Sprintf("%v", sig)).Debug("Stopping")
		cancelCtx()
	}()

	err := launchFile(rootCtx, args)
	if errors.Is(err, errScriptCancelled) {
		return nil
	}
	return err
}
