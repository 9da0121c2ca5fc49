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
	"fmt"
	"net/http"
	"testing"

	"github.com/mwhelan/graphmail/internal/graph"
	"github.com/mwhelan/graphmail/internal/query"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one scripted backend response.
type step struct {
	page *graph.Page
	err  error
}

// fakeLister serves scripted responses in order and records the
// requests it saw.
type fakeLister struct {
	steps    []step
	requests []graph.Request
}

func (f *fakeLister) List(ctx context.Context, req graph.Request) (*graph.Page, error) {
	f.requests = append(f.requests, req)
	if len(f.steps) == 0 {
		return &graph.Page{}, nil
	}
	s := f.steps[0]
	f.steps = f.steps[1:]
	return s.page, s.err
}

func items(n int, prefix string) []graph.Item {
	out := make([]graph.Item, n)
	for i := range out {
		out[i] = graph.Item{ID: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return out
}

func newPager(f *fakeLister) *Pager {
	return &Pager{Client: f, Log: zerolog.Nop()}
}

func listReq() graph.Request {
	return graph.ListRequest(query.RequestShape{Folder: "inbox", Top: 4})
}

func TestCollectExactCapMinimalRequests(t *testing.T) {
	cases := []struct {
		name         string
		max          int
		wantItems    int
		wantRequests int
		wantHasMore  bool
	}{
		// Three pages of 4 with cursors pending throughout.
		{name: "cap-mid-third-page", max: 10, wantItems: 10, wantRequests: 3, wantHasMore: true},
		{name: "cap-exactly-two-pages", max: 8, wantItems: 8, wantRequests: 2, wantHasMore: true},
		{name: "cap-first-page", max: 3, wantItems: 3, wantRequests: 1, wantHasMore: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeLister{steps: []step{
				{page: &graph.Page{Items: items(4, "a"), NextCursor: "c1"}},
				{page: &graph.Page{Items: items(4, "b"), NextCursor: "c2"}},
				{page: &graph.Page{Items: items(4, "c"), NextCursor: "c3"}},
			}}
			res, err := newPager(fake).Collect(context.Background(), listReq(), tc.max)
			require.NoError(t, err)
			assert.Len(t, res.Items, tc.wantItems)
			assert.Equal(t, tc.wantRequests, res.Requests)
			assert.Equal(t, tc.wantRequests, len(fake.requests))
			assert.Equal(t, tc.wantHasMore, res.HasMore)
			assert.False(t, res.Truncated)
		})
	}
}

func TestCollectStopsWhenCursorExhausted(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(3, "a")}},
	}}
	res, err := newPager(fake).Collect(context.Background(), listReq(), 5)
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, 1, res.Requests)
	assert.False(t, res.HasMore)
}

func TestCollectUnbounded(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(4, "a"), NextCursor: "c1"}},
		{page: &graph.Page{Items: items(4, "b"), NextCursor: "c2"}},
		{page: &graph.Page{Items: items(2, "c")}},
	}}
	res, err := newPager(fake).Collect(context.Background(), listReq(), 0)
	require.NoError(t, err)
	assert.Len(t, res.Items, 10)
	assert.Equal(t, 3, res.Requests)
	assert.False(t, res.HasMore)
}

func TestCollectFollowsCursorVerbatim(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(4, "a"), NextCursor: "https://example.test/page?skiptoken=xyz"}},
		{page: &graph.Page{Items: items(1, "b")}},
	}}
	_, err := newPager(fake).Collect(context.Background(), listReq(), 0)
	require.NoError(t, err)
	require.Len(t, fake.requests, 2)
	assert.False(t, fake.requests[0].IsCursor())
	require.True(t, fake.requests[1].IsCursor())
	assert.Equal(t, "https://example.test/page?skiptoken=xyz", fake.requests[1].Cursor)
	assert.Nil(t, fake.requests[1].Shape)
}

func TestCollectRejectsMutatingRequest(t *testing.T) {
	fake := &fakeLister{}
	_, err := newPager(fake).Collect(context.Background(), graph.Request{Method: http.MethodPost}, 5)
	assert.Error(t, err)
	assert.Empty(t, fake.requests, "no request should reach the backend")
}

func TestCollectFirstPageErrorIsFatal(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{err: errors.New("boom")},
	}}
	_, err := newPager(fake).Collect(context.Background(), listReq(), 5)
	assert.Error(t, err)
}

func TestCollectMidPaginationErrorReturnsPartial(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(4, "a"), NextCursor: "c1"}},
		{err: errors.New("timeout")},
	}}
	res, err := newPager(fake).Collect(context.Background(), listReq(), 10)
	require.NoError(t, err)
	assert.Len(t, res.Items, 4)
	assert.True(t, res.Truncated)
	assert.True(t, res.HasMore)
}

func TestCollectKeepsTotalCountHint(t *testing.T) {
	total := int64(42)
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(2, "a"), TotalCount: &total}},
	}}
	res, err := newPager(fake).Collect(context.Background(), listReq(), 0)
	require.NoError(t, err)
	require.NotNil(t, res.TotalCount)
	assert.Equal(t, total, *res.TotalCount)
}
