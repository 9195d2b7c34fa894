// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package run

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/tombee/kmsat/pkg/errors"
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// parseArgs merges --args-json and --arg values. --arg wins.
func parseArgs(argPairs []string, argsJSON string) (map[string]string, error) {
	args := make(map[string]string)
	if argsJSON != "" {
		var err error
		args, err = loadArgsFile(argsJSON)
		if err != nil {
			return nil, err
		}
	}

	for _, pair := range argPairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, &pkgerrors.ValidationError{
				Field:   "arg",
				Message: fmt.Sprintf("invalid argument %q (expected key=value)", pair),
				Hint:    "Pass arguments as --arg event_type=phishing",
			}
		}
		args[parts[0]] = parts[1]
	}

	return args, nil
}

// loadArgsFile reads a flat JSON object of arguments from path or stdin.
// Scalar values are converted to their string form.
func loadArgsFile(path string) (map[string]string, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, &pkgerrors.ValidationError{
				Field:   "args-json",
				Message: fmt.Sprintf("failed to read %s: %v", path, err),
			}
		}
	}

	var raw map[string]interface{}
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, &pkgerrors.ValidationError{
			Field:   "args-json",
			Message: fmt.Sprintf("failed to parse JSON arguments: %v", err),
			Hint:    `Provide an object such as {"event_type": "phishing"}`,
		}
	}

	args := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			args[key] = v
		case json.Number, bool:
			args[key] = fmt.Sprint(v)
		default:
			return nil, &pkgerrors.ValidationError{
				Field:   "args-json",
				Message: fmt.Sprintf("argument %q must be a string, number or boolean", key),
			}
		}
	}

	return args, nil
}

// flagName maps an argument name to its shortcut flag (event_type -> event-type).
func flagName(arg string) string {
	return strings.ReplaceAll(arg, "_", "-")
}
