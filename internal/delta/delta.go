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

// Package delta manages the two-phase lifecycle of incremental
// mailbox synchronization: an initial full baseline that yields a
// durable sync token, and token-driven passes that return only what
// changed since the last one.
//
// Sync state is caller-held and single-writer: two passes must not run
// concurrently against the same State, or last-writer-wins token
// replacement corrupts the sync position. States for different folders
// are independent.
package delta

import (
	"context"

	"github.com/mwhelan/graphmail/internal/fields"
	"github.com/mwhelan/graphmail/internal/graph"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultPageSize = 50

// ErrResyncRequired is the distinct expired-token outcome: the caller
// must discard the sync state and restart with an initial sync. The
// manager never restarts on its own, because throwing the baseline
// away is a caller-visible, potentially costly decision.
var ErrResyncRequired = graph.ErrResyncRequired

// Source is the delta-capable retrieval surface the manager needs.
// *graph.Service satisfies it.
type Source interface {
	DeltaList(ctx context.Context, folder string, selectFields []string, top int) (*graph.DeltaPage, error)
	DeltaNext(ctx context.Context, link string) (*graph.DeltaPage, error)
}

// State is the caller-held sync position for one folder. An empty
// Token means the next pass is an initial sync.
type State struct {
	Folder string
	Token  string
}

// Kind tags a ChangeRecord. The backend's delta protocol does not
// distinguish created from updated records, so both surface as
// Upserted; inventing a disambiguation the backend cannot support
// would just be guessing.
type Kind string

const (
	Upserted Kind = "created-or-updated"
	Removed  Kind = "removed"
)

// Change is one item from a delta pass.
type Change struct {
	Kind Kind
	Item graph.Item

	// RemovedReason is the backend's optional reason string, only on
	// removals.
	RemovedReason string
}

// Result is the outcome of one sync pass.
type Result struct {
	Changes []Change

	// State carries the token to hand to the next call. It is
	// replaced whenever the backend issued a new durable token,
	// whether the pass was initial or incremental.
	State State

	// Complete means the pass finished and State.Token is the new
	// baseline.
	Complete bool

	// Truncated means the pass was aborted mid-pagination; Changes
	// holds what was gathered and State is unchanged.
	Truncated bool
}

// Manager drives delta sync passes against a Source.
type Manager struct {
	Source   Source
	Preset   fields.Preset
	PageSize int
	Log      zerolog.Logger
}

// Sync performs one pass for st. With no token it fetches the full
// baseline; with a token it fetches only the changes since that token,
// following continuation cursors within the pass either way. Nothing
// is attachable to a token request, so the stored token is issued
// verbatim.
//
// An expired token surfaces as ErrResyncRequired (test with
// errors.Cause); any other failure after the first page returns the
// partial result with Truncated set.
func (m *Manager) Sync(ctx context.Context, st State, maxPerPage int) (*Result, error) {
	if st.Folder == "" {
		return nil, errors.New("delta: sync state has no folder")
	}
	top := maxPerPage
	if top <= 0 {
		top = m.PageSize
	}
	if top <= 0 {
		top = defaultPageSize
	}
	preset := m.Preset
	if preset == "" {
		preset = fields.Delta
	}

	res := &Result{State: st}
	var page *graph.DeltaPage
	var err error
	if st.Token == "" {
		m.Log.Info().Str("folder", st.Folder).Msg("starting initial sync")
		page, err = m.Source.DeltaList(ctx, st.Folder, fields.For(preset, m.Log), top)
	} else {
		page, err = m.Source.DeltaNext(ctx, st.Token)
	}

	for {
		if err != nil {
			if errors.Cause(err) == graph.ErrResyncRequired {
				return nil, errors.Wrapf(err, "delta: token for folder %q expired", st.Folder)
			}
			if len(res.Changes) == 0 {
				return nil, errors.Wrapf(err, "delta: sync pass for folder %q failed", st.Folder)
			}
			m.Log.Warn().Err(err).Str("folder", st.Folder).Int("gathered", len(res.Changes)).
				Msg("sync pass aborted, returning partial changes")
			res.Truncated = true
			return res, nil
		}

		for _, it := range page.Items {
			if it.Removed != nil {
				res.Changes = append(res.Changes, Change{
					Kind:          Removed,
					Item:          it,
					RemovedReason: it.Removed.Reason,
				})
				continue
			}
			res.Changes = append(res.Changes, Change{Kind: Upserted, Item: it})
		}

		if page.DeltaLink != "" {
			res.State.Token = page.DeltaLink
			res.Complete = true
			m.Log.Info().Str("folder", st.Folder).Int("changes", len(res.Changes)).
				Msg("sync pass complete")
			return res, nil
		}
		if page.NextLink == "" {
			// The contract promises a cursor or a token on every
			// page; without either, stop where we are rather than
			// loop.
			m.Log.Warn().Str("folder", st.Folder).
				Msg("delta page carried neither cursor nor token")
			return res, nil
		}
		page, err = m.Source.DeltaNext(ctx, page.NextLink)
	}
}
