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

package system

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Production JSON output is used unless
// debug is set, in which case the development console encoder is used.
func NewLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	// Disable automatic stacktraces for non-fatal levels to avoid noisy traces in WARN/INFO logs
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	// Log output goes to stderr so rendered templates on stdout stay clean.
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// RecipientFields returns key/value pairs describing recipient counts,
// suitable for passing to SugaredLogger.With or Infow/Errorw calls. Addresses
// themselves are only logged at debug level by callers.
func RecipientFields(to, cc, bcc int) []interface{} {
	fields := []interface{}{"to", to}
	if cc > 0 {
		fields = append(fields, "cc", cc)
	}
	if bcc > 0 {
		fields = append(fields, "bcc", bcc)
	}
	return fields
}
