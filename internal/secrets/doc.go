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

/*
Package secrets resolves API keys without storing them in the params file.

Secrets are looked up through a priority-ordered chain of backends:

	env      - Environment variables (KMSAT_SECRET_*), read-only
	keychain - OS keychain (macOS Keychain, Linux Secret Service, Windows Credential Manager)

Params values may reference a secret instead of holding it:

	apikey:
	  password: keychain:reporting
	userEventsApiKey:
	  password: env:KB4_EVENTS_KEY

ResolveReference understands env:NAME, ${NAME} and keychain:NAME. Any other
value is returned unchanged.
*/
package secrets
