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

package shared

// Global flag values - set by root command
var (
	verboseFlag         bool
	quietFlag           bool
	jsonFlag            bool
	configFlag          string
	envFileFlag         string
	metricsTextfileFlag string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// GlobalFlags holds pointers to the persistent flag variables.
type GlobalFlags struct {
	Verbose         *bool
	Quiet           *bool
	JSON            *bool
	Config          *string
	EnvFile         *string
	MetricsTextfile *string
}

// RegisterFlagPointers returns pointers to flag variables for binding.
// Called by root command to register flags.
func RegisterFlagPointers() GlobalFlags {
	return GlobalFlags{
		Verbose:         &verboseFlag,
		Quiet:           &quietFlag,
		JSON:            &jsonFlag,
		Config:          &configFlag,
		EnvFile:         &envFileFlag,
		MetricsTextfile: &metricsTextfileFlag,
	}
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verboseFlag
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quietFlag
}

// GetJSON returns the JSON output flag value
func GetJSON() bool {
	return jsonFlag
}

// GetConfigPath returns the params file path
func GetConfigPath() string {
	return configFlag
}

// GetEnvFile returns the dotenv file path
func GetEnvFile() string {
	return envFileFlag
}

// GetMetricsTextfile returns the path metrics are written to after a run
func GetMetricsTextfile() string {
	return metricsTextfileFlag
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// ResetFlagsForTest restores every global flag to its zero value.
func ResetFlagsForTest() {
	verboseFlag = false
	quietFlag = false
	jsonFlag = false
	configFlag = ""
	envFileFlag = ""
	metricsTextfileFlag = ""
}
