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

// Package search drives retrievals against the mailbox: a cursor
// paginator that accumulates pages up to a caller-specified cap, and a
// progressive executor that tries request shapes in order of
// specificity until one produces results.
package search

import (
	"context"
	"net/http"

	"github.com/mwhelan/graphmail/internal/graph"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Lister is the retrieval surface the paginator needs. *graph.Service
// satisfies it.
type Lister interface {
	List(ctx context.Context, req graph.Request) (*graph.Page, error)
}

// Pager follows continuation cursors until the cursor is exhausted or
// the result cap is reached.
type Pager struct {
	Client Lister
	Log    zerolog.Logger
}

// PageResult is the accumulated outcome of one paginated retrieval.
type PageResult struct {
	Items []graph.Item

	// HasMore means the backend had more items than were returned:
	// either a cursor was still pending when the cap was reached, or
	// the last page overshot and was trimmed.
	HasMore bool

	// Truncated means accumulation was aborted mid-pagination (by a
	// transport failure or cancellation) and Items holds only what
	// was gathered before the abort.
	Truncated bool

	// TotalCount is the backend's total-count hint, when present.
	TotalCount *int64

	// Requests is the number of page requests issued.
	Requests int
}

// Collect issues req and follows the continuation cursors the
// responses supply, each followed verbatim with no added parameters,
// until a response carries no cursor or max items (max > 0) have been
// gathered. The result is trimmed to exactly max; no page request is
// issued once the cap has already been met.
//
// A failure on the first page is the caller's problem and returns an
// error. A failure on a later page returns the partial accumulation
// with Truncated set instead of discarding the progress.
//
// Pagination is read-only by construction: a non-retrieval request is
// a precondition failure.
func (p *Pager) Collect(ctx context.Context, req graph.Request, max int) (*PageResult, error) {
	if req.Method != http.MethodGet {
		return nil, errors.Errorf("search: cannot paginate a %s request", req.Method)
	}

	res := &PageResult{}
	next := req
	for {
		page, err := p.Client.List(ctx, next)
		if err != nil {
			if res.Requests == 0 {
				return nil, err
			}
			p.Log.Warn().Err(err).Int("gathered", len(res.Items)).
				Msg("pagination aborted, returning partial results")
			res.Truncated = true
			res.HasMore = true
			break
		}
		res.Requests++
		res.Items = append(res.Items, page.Items...)
		if page.TotalCount != nil {
			res.TotalCount = page.TotalCount
		}
		if page.NextCursor == "" {
			break
		}
		if max > 0 && len(res.Items) >= max {
			res.HasMore = true
			break
		}
		next = graph.CursorRequest(page.NextCursor)
	}

	if max > 0 && len(res.Items) > max {
		res.Items = res.Items[:max]
		res.HasMore = true
	}
	return res, nil
}
