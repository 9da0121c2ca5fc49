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

package graph

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized means the credentials were rejected. It is
	// propagated unchanged; re-authentication is the caller's problem.
	ErrUnauthorized = errors.New("graph: unauthorized")

	// ErrResyncRequired means a delta token has expired and the sync
	// state it belongs to must be discarded before starting over with
	// an initial sync.
	ErrResyncRequired = errors.New("graph: delta token expired, full resync required")
)

// RequestRejectedError is a request the backend refused to serve,
// typically a filter/search combination its grammar does not support.
// The search executor recovers from these by falling back to a less
// specific shape.
type RequestRejectedError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RequestRejectedError) Error() string {
	return fmt.Sprintf("graph: request rejected (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// IsRejected reports whether err is a recoverable request rejection.
func IsRejected(err error) bool {
	_, ok := errors.Cause(err).(*RequestRejectedError)
	return ok
}

// odataError is the error envelope the backend returns.
type odataError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// resyncCodes are the error codes that signal an expired delta token,
// compared case-insensitively.
var resyncCodes = []string{"resyncrequired", "syncstatenotfound"}

func isResyncCode(code string) bool {
	lower := strings.ToLower(code)
	for _, c := range resyncCodes {
		if lower == c {
			return true
		}
	}
	return false
}
