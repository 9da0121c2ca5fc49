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

// Package fields defines the named field-projection presets used when
// requesting message resources. Each preset is a fixed, ordered list of
// response fields tuned to one use case, so responses stay as small as
// the use case allows.
package fields

import (
	"github.com/rs/zerolog"
)

// Preset names a field projection.
type Preset string

const (
	// List is the conservative default: just enough to render a
	// one-line listing.
	List Preset = "list"

	// Read covers displaying a single message in full.
	Read Preset = "read"

	// Forensic adds transport headers and folder placement for
	// header-level inspection.
	Forensic Preset = "forensic"

	// Export is the widest projection, for archival dumps.
	Export Preset = "export"

	// Search is List plus a body preview for relevance judgement.
	Search Preset = "search"

	// Delta is the projection used by incremental sync passes.
	Delta Preset = "delta"

	// Conversation covers grouping messages by thread.
	Conversation Preset = "conversation"
)

var projections = map[Preset][]string{
	List: {
		"id", "subject", "from", "receivedDateTime", "isRead",
		"hasAttachments",
	},
	Read: {
		"id", "subject", "from", "toRecipients", "ccRecipients",
		"receivedDateTime", "sentDateTime", "isRead", "hasAttachments",
		"importance", "body", "conversationId", "internetMessageId",
		"webLink",
	},
	Forensic: {
		"id", "subject", "from", "sender", "toRecipients",
		"ccRecipients", "replyTo", "receivedDateTime", "sentDateTime",
		"internetMessageId", "internetMessageHeaders", "parentFolderId",
		"conversationId",
	},
	Export: {
		"id", "subject", "from", "sender", "toRecipients",
		"ccRecipients", "replyTo", "receivedDateTime", "sentDateTime",
		"isRead", "isDraft", "hasAttachments", "importance", "body",
		"bodyPreview", "internetMessageId", "internetMessageHeaders",
		"conversationId", "parentFolderId", "categories", "webLink",
	},
	Search: {
		"id", "subject", "from", "receivedDateTime", "isRead",
		"hasAttachments", "bodyPreview",
	},
	Delta: {
		"id", "subject", "from", "receivedDateTime", "isRead",
		"hasAttachments", "parentFolderId",
	},
	Conversation: {
		"id", "subject", "from", "receivedDateTime", "isRead",
		"conversationId", "bodyPreview",
	},
}

// Valid reports whether p names a known preset. Callers at the request
// boundary use this to reject unknown names before they reach the
// engine.
func Valid(p Preset) bool {
	_, ok := projections[p]
	return ok
}

// For returns the ordered field list for p. An unknown preset degrades
// to the List projection with a logged warning instead of failing the
// request: an overly broad field list only costs bandwidth, never
// correctness. The returned slice is a copy and safe to append to.
func For(p Preset, log zerolog.Logger) []string {
	proj, ok := projections[p]
	if !ok {
		log.Warn().Str("preset", string(p)).Msg("unknown field preset, using list projection")
		proj = projections[List]
	}
	out := make([]string, len(proj))
	copy(out, proj)
	return out
}
