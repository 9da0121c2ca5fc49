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
	"net/http"

	"github.com/mwhelan/graphmail/internal/query"
)

// Request is the union of the two ways a retrieval can be addressed: a
// fresh request built from a RequestShape, or a server-issued
// continuation cursor followed verbatim. Keeping the two distinct
// prevents filter parameters from ever being re-attached to a cursor,
// which the backend rejects.
type Request struct {
	// Method is the HTTP method. The constructors below always
	// produce GETs; pagination refuses anything else.
	Method string

	// Shape is set for a fresh retrieval.
	Shape *query.RequestShape

	// Cursor is the continuation URL, set instead of Shape.
	Cursor string
}

// ListRequest addresses a fresh retrieval from shape.
func ListRequest(shape query.RequestShape) Request {
	return Request{Method: http.MethodGet, Shape: &shape}
}

// CursorRequest follows a server-issued continuation cursor.
func CursorRequest(url string) Request {
	return Request{Method: http.MethodGet, Cursor: url}
}

// IsCursor reports whether r follows a cursor instead of a shape.
func (r Request) IsCursor() bool {
	return r.Cursor != ""
}

// Retrieval reports whether r is a read-only request.
func (r Request) Retrieval() bool {
	return r.Method == http.MethodGet
}
