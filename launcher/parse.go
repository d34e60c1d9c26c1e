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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Internal representation of a definition file (pre-processed)
type launchDefinition struct {
	steps []launchStep
	serve launchStep
}

type launchStep struct {
	Name        string
	Folder      string
	Environment []string
	Quiet       bool

	Commands [][]string
}

// YAML definition file descriptor structures
type yamlFile struct {
	Global yamlGlobal
	Steps  []yamlStep
	Serve  yamlServe
}

type yamlStep struct {
	Name        string
	Folder      string
	Environment yaml.MapSlice
	Quiet       bool
	Commands    [][]string
}

type yamlServe struct {
	Folder      string
	Environment yaml.MapSlice
	Command     []string
}

type yamlGlobal struct {
	Environment yaml.MapSlice
	Folder      string
}

func copyMap(src map[string]string) map[string]string {
	result := make(map[string]string)
	for name, value := range src {
		result[name] = value
	}

	return result
}

// Copy slice in a new array
func copySlice(src []string) []string {
	result := make([]string, len(src))
	copy(result, src)
	return result
}

func loadYaml(fileName string) (*yamlFile, error) {
	var result yamlFile

	yamlContent, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	err = yaml.UnmarshalStrict(yamlContent, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func parseString(text string, dictionary map[string]string) (string, error) {
	parseTemplate, err := template.New("tmp").Parse(text)
	if err != nil {
		return "", err
	}

	var resultBytes bytes.Buffer
	err = parseTemplate.Execute(&resultBytes, dictionary)
	if err != nil {
		return "", err
	}

	return resultBytes.String(), nil
}

func parseEnvironment(
	env yaml.MapSlice,
	stepName string,
	dict map[string]string,
	environment []string,
) (map[string]string, []string, error) {
	for _, item := range env {
		name := fmt.Sprintf("%v", item.Key)
		var value string
		if item.Value != nil {
			value = fmt.Sprintf("%v", item.Value)
		}

		parsedValue, err := parseString(value, dict)
		if err != nil {
			log.WithFields(logrus.Fields{
				"cmd":   stepName,
				"error": err,
			}).Debug("Environment variable substitution failed")
			return nil, nil, err
		}
		dict[name] = parsedValue
		environment = append(environment, fmt.Sprintf("%v=%v", name, parsedValue))
	}

	return dict, environment, nil
}

func parseFolder(folder string, basePath string) string {
	if len(folder) == 0 {
		return basePath
	}
	if filepath.IsAbs(folder) {
		return folder
	}
	return filepath.Join(basePath, folder)
}

func parseCommands(
	commands [][]string,
	stepName string,
	dict map[string]string,
) ([][]string, error) {
	result := make([][]string, 0, len(commands))
	for _, cmd := range commands {
		var parsedCmd = make([]string, 0, len(cmd))
		for _, arg := range cmd {
			parsedArg, err := parseString(arg, dict)
			if err != nil {
				log.WithFields(logrus.Fields{
					"cmd":   stepName,
					"error": err,
				}).Debug("Command variable substitution failed")
				return nil, err
			}
			parsedCmd = append(parsedCmd, parsedArg)
		}

		result = append(result, parsedCmd)
	}
	return result, nil
}

func parseStep(
	step *yamlStep,
	baseDict map[string]string,
	globalEnv []string,
	basePath string,
) (launchStep, error) {
	if len(step.Name) == 0 {
		return launchStep{}, fmt.Errorf("step without a name")
	}

	result := launchStep{
		Name:   step.Name,
		Quiet:  step.Quiet,
		Folder: parseFolder(step.Folder, basePath),
	}

	stepDict, environment, err := parseEnvironment(
		step.Environment, step.Name, copyMap(baseDict), copySlice(globalEnv))
	if err != nil {
		return launchStep{}, err
	}
	result.Environment = environment

	result.Commands, err = parseCommands(step.Commands, step.Name, stepDict)
	if err != nil {
		return launchStep{}, err
	}
	if len(result.Commands) == 0 {
		return launchStep{}, fmt.Errorf("step [%s] has no command", step.Name)
	}

	return result, nil
}

const serveStepName = "serve"

func parseServe(
	serve *yamlServe,
	baseDict map[string]string,
	globalEnv []string,
	basePath string,
) (launchStep, error) {
	if len(serve.Command) == 0 {
		return launchStep{}, fmt.Errorf("no serve command defined")
	}

	result := launchStep{
		Name:   serveStepName,
		Folder: parseFolder(serve.Folder, basePath),
	}

	serveDict, environment, err := parseEnvironment(
		serve.Environment, serveStepName, copyMap(baseDict), copySlice(globalEnv))
	if err != nil {
		return launchStep{}, err
	}
	result.Environment = environment

	result.Commands, err = parseCommands([][]string{serve.Command}, serveStepName, serveDict)
	if err != nil {
		return launchStep{}, err
	}

	return result, nil
}

func parseFile(filename string, cliArgs []string) (launchDefinition, error) {
	yamlDef, err := loadYaml(filename)
	if err != nil {
		return launchDefinition{}, err
	}

	baseDict := make(map[string]string)
	for _, str := range os.Environ() {
		index := strings.IndexRune(str, '=')
		name := str[:index]
		value := str[index+1:]
		baseDict[name] = value
	}

	argIndex := 0
	for ; argIndex < len(cliArgs); argIndex++ {
		argName := fmt.Sprintf("__%v", argIndex+1)
		baseDict[argName] = cliArgs[argIndex]
	}
	for ; argIndex < 9; argIndex++ { // 1 to 9 are always defined
		argName := fmt.Sprintf("__%v", argIndex+1)
		baseDict[argName] = ""
	}

	baseDict, globalEnv, err := parseEnvironment(
		yamlDef.Global.Environment, "global", baseDict, os.Environ())
	if err != nil {
		return launchDefinition{}, err
	}

	var basePath string
	if filepath.IsAbs(yamlDef.Global.Folder) {
		basePath = yamlDef.Global.Folder
	} else {
		rootPath := filepath.Dir(filename)
		basePath = filepath.Join(rootPath, yamlDef.Global.Folder)
	}

	result := launchDefinition{
		steps: make([]launchStep, 0, len(yamlDef.Steps)),
	}

	nameSeen := make(map[string]bool)
	for index := range yamlDef.Steps {
		step, err := parseStep(&yamlDef.Steps[index], baseDict, globalEnv, basePath)
		if err != nil {
			return launchDefinition{}, err
		}
		if nameSeen[step.Name] {
			return launchDefinition{}, fmt.Errorf("duplicate step name [%s]", step.Name)
		}
		nameSeen[step.Name] = true

		result.steps = append(result.steps, step)
	}

	result.serve, err = parseServe(&yamlDef.Serve, baseDict, globalEnv, basePath)
	if err != nil {
		return launchDefinition{}, err
	}

	return result, nil
}
