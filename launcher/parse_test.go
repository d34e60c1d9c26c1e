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

package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLaunchFile(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "launch.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o600))
	return filename
}

func TestParseFileKeepsStepOrder(t *testing.T) {
	filename := writeLaunchFile(t, `
steps:
  - name: first
    commands:
      - ["echo", "one"]
  - name: second
    commands:
      - ["echo", "two"]
      - ["echo", "three"]
serve:
  command: ["./bot", "serve"]
`)

	def, err := parseFile(filename, nil)
	require.NoError(t, err)

	require.Len(t, def.steps, 2)
	assert.Equal(t, "first", def.steps[0].Name)
	assert.Equal(t, "second", def.steps[1].Name)
	assert.Equal(t, [][]string{{"echo", "one"}}, def.steps[0].Commands)
	require.Len(t, def.steps[1].Commands, 2)

	assert.Equal(t, serveStepName, def.serve.Name)
	assert.Equal(t, [][]string{{"./bot", "serve"}}, def.serve.Commands)
}

func TestParseFileWithoutServeCommand(t *testing.T) {
	filename := writeLaunchFile(t, `
steps:
  - name: only
    commands:
      - ["true"]
`)

	_, err := parseFile(filename, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no serve command defined")
}

func TestParseFileStepWithoutName(t *testing.T) {
	filename := writeLaunchFile(t, `
steps:
  - commands:
      - ["true"]
serve:
  command: ["./bot"]
`)

	_, err := parseFile(filename, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step without a name")
}

func TestParseFileStepWithoutCommands(t *testing.T) {
	filename := writeLaunchFile(t, `
steps:
  - name: empty
serve:
  command: ["./bot"]
`)

	_, err := parseFile(filename, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step [empty] has no command")
}

func TestParseFileDuplicateStepName(t *testing.T) {
	filename := writeLaunchFile(t, `
steps:
  - name: twice
    commands:
      - ["true"]
  - name: twice
    commands:
      - ["true"]
serve:
  command: ["./bot"]
`)

	_, err := parseFile(filename, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step name [twice]")
}

func TestParseFileRejectsUnknownFields(t *testing.T) {
	filename := writeLaunchFile(t, `
bogus: true
serve:
  command: ["./bot"]
`)

	_, err := parseFile(filename, nil)
	require.Error(t, err)
}

func TestParseFileSubstitution(t *testing.T) {
	t.Setenv("LAUNCH_TEST_HOST", "example.test")

	filename := writeLaunchFile(t, `
global:
  environment:
    GREETING: hello
    TARGET: "{{.GREETING}}-{{.LAUNCH_TEST_HOST}}"
steps:
  - name: greet
    environment:
      LOCAL: "{{.TARGET}}"
    commands:
      - ["echo", "{{.LOCAL}}", "{{.__1}}", "{{.__2}}"]
serve:
  command: ["./bot", "--host", "{{.LAUNCH_TEST_HOST}}"]
`)

	def, err := parseFile(filename, []string{"arg-one"})
	require.NoError(t, err)

	require.Len(t, def.steps, 1)
	step := def.steps[0]
	assert.Contains(t, step.Environment, "GREETING=hello")
	assert.Contains(t, step.Environment, "TARGET=hello-example.test")
	assert.Contains(t, step.Environment, "LOCAL=hello-example.test")

	require.Len(t, step.Commands, 1)
	// Unset positional args resolve to the empty string.
	assert.Equal(t, []string{"echo", "hello-example.test", "arg-one", ""}, step.Commands[0])

	assert.Equal(t, [][]string{{"./bot", "--host", "example.test"}}, def.serve.Commands)
}

func TestParseFileFolders(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "launch.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(`
global:
  folder: sub
steps:
  - name: relative
    folder: deeper
    commands:
      - ["true"]
  - name: absolute
    folder: /tmp
    commands:
      - ["true"]
serve:
  command: ["./bot"]
`), 0o600))

	def, err := parseFile(filename, nil)
	require.NoError(t, err)

	require.Len(t, def.steps, 2)
	assert.Equal(t, filepath.Join(dir, "sub", "deeper"), def.steps[0].Folder)
	assert.Equal(t, "/tmp", def.steps[1].Folder)
	assert.Equal(t, filepath.Join(dir, "sub"), def.serve.Folder)
}

func TestParseFileIsDeterministic(t *testing.T) {
	filename := writeLaunchFile(t, `
steps:
  - name: alpha
    commands:
      - ["echo", "a"]
  - name: beta
    commands:
      - ["echo", "b"]
serve:
  command: ["./bot", "serve"]
`)

	first, err := parseFile(filename, []string{"x"})
	require.NoError(t, err)
	second, err := parseFile(filename, []string{"x"})
	require.NoError(t, err)

	assert.Equal(t, first.steps, second.steps)
	assert.Equal(t, first.serve, second.serve)
}

func TestParseString(t *testing.T) {
	result, err := parseString("{{.A}}-{{.B}}", map[string]string{"A": "x", "B": "y"})
	require.NoError(t, err)
	assert.Equal(t, "x-y", result)

	_, err = parseString("{{.A", nil)
	assert.Error(t, err)
}
