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

package config

import (
	"fmt"
	"net/url"

	kmsaterrors "github.com/tombee/kmsat/pkg/errors"
)

func validateBaseURL(key, raw string) error {
	if raw == "" {
		return &kmsaterrors.ConfigError{
			Key:    key,
			Reason: fmt.Sprintf("Missing %s. Fill in a valid URL in the integration configuration.", key),
		}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &kmsaterrors.ConfigError{
			Key:    key,
			Reason: fmt.Sprintf("invalid %s %q: expected an http(s) URL", key, raw),
			Cause:  err,
		}
	}
	return nil
}
