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

// Package query models a caller's search intent and turns it into the
// ordered list of request shapes the backend will be asked to serve.
//
// The backend's query grammar has mutually exclusive capabilities:
// full-text search cannot be combined with every filter predicate, and
// filtering on an address field precludes server-side sorting. The
// builder in this package encodes those exclusions so that each shape
// it emits is internally consistent on its own.
package query

import "strings"

// Criteria is a caller's search intent, normalized at the request
// boundary. A zero Criteria matches everything in the scope folder.
//
// Date bounds are kept as the caller-supplied strings; they are parsed
// at build time and a malformed bound is logged and dropped rather
// than failing the request.
type Criteria struct {
	// Text is unstructured search text.
	Text string

	// RawQuery bypasses all other fields and is sent verbatim as the
	// text-search expression. When present it is always tried first.
	RawQuery string

	// Sender and Recipient are either a literal address (contains an
	// "@") or a display-name fragment.
	Sender    string
	Recipient string

	// Subject restricts matches to the subject line.
	Subject string

	// HasAttachments, when set, requires the flag to match exactly.
	HasAttachments *bool

	// UnreadOnly restricts matches to unread messages.
	UnreadOnly bool

	// ReceivedAfter and ReceivedBefore bound the received time. They
	// accept RFC 3339 timestamps or plain dates (2006-01-02).
	ReceivedAfter  string
	ReceivedBefore string

	// Folder scopes the search; AllFolders widens it to the whole
	// mailbox.
	Folder     string
	AllFolders bool
}

// isAddress reports whether v should be treated as a literal email
// address rather than a display-name fragment.
func isAddress(v string) bool {
	return strings.Contains(v, "@")
}

// drivers counts the populated criteria that can each drive a
// single-term strategy on their own. The combined strategy is only
// worth a round trip when two or more of them need to agree.
func (c Criteria) drivers() int {
	n := 0
	for _, s := range []string{c.Text, c.Subject, c.Sender, c.Recipient} {
		if s != "" {
			n++
		}
	}
	if c.HasAttachments != nil {
		n++
	}
	if c.UnreadOnly {
		n++
	}
	return n
}
