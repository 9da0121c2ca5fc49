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

package search

import (
	"context"

	"github.com/mwhelan/graphmail/internal/fields"
	"github.com/mwhelan/graphmail/internal/graph"
	"github.com/mwhelan/graphmail/internal/query"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultPageSize = 25

// Attempt records one strategy tried, in order, with its outcome. The
// full list rides along on the result as provenance.
type Attempt struct {
	Strategy string
	Count    int
	Err      string
}

// Result is a completed search. Strategy names the candidate that
// produced Items; Attempts holds every candidate tried up to and
// including that one. A genuinely empty mailbox and "every structured
// strategy failed" both come back as an empty fallback result; only
// the attempt list tells them apart.
type Result struct {
	Items      []graph.Item
	Strategy   string
	Attempts   []Attempt
	HasMore    bool
	Truncated  bool
	TotalCount *int64
}

// Executor runs the ordered candidate list for a set of criteria,
// stopping at the first strategy that yields a non-empty page.
type Executor struct {
	Pager    *Pager
	PageSize int
	Log      zerolog.Logger
}

// Search expands c into candidates and executes them in order. A
// request-level error on a candidate is treated the same as a
// zero-result outcome: the loop moves on. Only the final unconditional
// fallback can fail the call, because at that point there is nothing
// useful left to return.
func (e *Executor) Search(ctx context.Context, c query.Criteria, max int, preset fields.Preset) (*Result, error) {
	top := e.PageSize
	if top <= 0 {
		top = defaultPageSize
	}
	if max > 0 && max < top {
		top = max
	}

	cands := query.Candidates(c, top, preset, e.Log)
	attempts := make([]Attempt, 0, len(cands))

	for i, cand := range cands {
		last := i == len(cands)-1
		pr, err := e.Pager.Collect(ctx, graph.ListRequest(cand.Shape), max)
		if err != nil {
			attempts = append(attempts, Attempt{Strategy: cand.Strategy, Err: err.Error()})
			if last {
				return nil, errors.Wrapf(err, "search: fallback strategy %q failed", cand.Strategy)
			}
			e.Log.Debug().Err(err).Str("strategy", cand.Strategy).
				Msg("strategy failed, falling back")
			continue
		}
		attempts = append(attempts, Attempt{Strategy: cand.Strategy, Count: len(pr.Items)})
		if len(pr.Items) > 0 || last {
			return &Result{
				Items:      pr.Items,
				Strategy:   cand.Strategy,
				Attempts:   attempts,
				HasMore:    pr.HasMore,
				Truncated:  pr.Truncated,
				TotalCount: pr.TotalCount,
			}, nil
		}
		e.Log.Debug().Str("strategy", cand.Strategy).Msg("strategy matched nothing, falling back")
	}

	// The candidate list always ends with the unconditional fallback,
	// so the loop returns from its last iteration.
	return nil, errors.New("search: no candidates built")
}
