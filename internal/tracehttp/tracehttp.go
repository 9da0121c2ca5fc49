// Copyright 2026 The graphmail Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracehttp dumps requests and responses for debugging.
package tracehttp

import (
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog"
)

// traceTransport is an http.RoundTripper that logs a dump of the
// request and response while delegating the real work to another
// http.RoundTripper. Dumps include bodies and headers; do not leave
// this enabled where bearer tokens in the output matter.
type traceTransport struct {
	delegate http.RoundTripper
	log      zerolog.Logger
}

func (t *traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if dump, err := httputil.DumpRequest(req, true); err == nil {
		t.log.Debug().Str("dump", string(dump)).Msg("request")
	}
	resp, err := t.delegate.RoundTrip(req)
	if err == nil {
		if dump, dumpErr := httputil.DumpResponse(resp, true); dumpErr == nil {
			t.log.Debug().Str("dump", string(dump)).Msg("response")
		}
	}
	return resp, err
}

// Wrap returns a tracing RoundTripper delegating to d.
func Wrap(d http.RoundTripper, log zerolog.Logger) http.RoundTripper {
	if d == nil {
		d = http.DefaultTransport
	}
	return &traceTransport{delegate: d, log: log}
}

// WrapClient injects tracing into c's transport.
func WrapClient(c *http.Client, log zerolog.Logger) {
	c.Transport = Wrap(c.Transport, log)
}
