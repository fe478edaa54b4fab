/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"github.com/joho/godotenv"
)

// FileEnvironment reads a .env file into an Environment. Variables defined in
// base take precedence over the file, the same order godotenv.Load applies to
// the process environment. The process environment itself is not modified.
func FileEnvironment(path string, base Environment) (Environment, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, &Error{Field: "envFile", Reason: "reading " + path, Err: err}
	}
	file := MapEnvironment(values)
	if base == nil {
		return file, nil
	}
	return func(key string) (string, bool) {
		if v, ok := base(key); ok {
			return v, true
		}
		return file(key)
	}, nil
}
