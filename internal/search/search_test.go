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
	"testing"

	"github.com/mwhelan/graphmail/internal/fields"
	"github.com/mwhelan/graphmail/internal/graph"
	"github.com/mwhelan/graphmail/internal/query"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecutor(f *fakeLister) *Executor {
	return &Executor{Pager: newPager(f), Log: zerolog.Nop()}
}

func boolPtr(b bool) *bool { return &b }

// A sender-only search that matches on the first strategy issues
// exactly one request and records the single-term-sender strategy.
func TestSearchSenderOnlySingleRequest(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(3, "m")}},
	}}
	res, err := newExecutor(fake).Search(context.Background(),
		query.Criteria{Sender: "boss@co.com", Folder: "inbox"}, 5, fields.List)
	require.NoError(t, err)

	assert.Len(t, res.Items, 3)
	assert.Equal(t, query.StrategySenderTerm, res.Strategy)
	assert.Len(t, fake.requests, 1)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, query.StrategySenderTerm, res.Attempts[0].Strategy)
	assert.Equal(t, 3, res.Attempts[0].Count)
}

// A rejected combined shape falls through to the free-text single-term
// strategy; the result is trimmed to the requested cap.
func TestSearchFallsBackPastRejectedShape(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{err: &graph.RequestRejectedError{StatusCode: 400, Code: "InefficientFilter", Message: "no"}},
		{page: &graph.Page{Items: items(12, "m")}},
	}}
	c := query.Criteria{Text: "quarterly report", HasAttachments: boolPtr(true), Folder: "inbox"}
	res, err := newExecutor(fake).Search(context.Background(), c, 10, fields.Search)
	require.NoError(t, err)

	assert.Len(t, res.Items, 10)
	assert.Equal(t, query.StrategyFreeTextTerm, res.Strategy)
	require.Len(t, res.Attempts, 2)
	assert.Equal(t, query.StrategyCombined, res.Attempts[0].Strategy)
	assert.NotEmpty(t, res.Attempts[0].Err)
	assert.Equal(t, query.StrategyFreeTextTerm, res.Attempts[1].Strategy)
}

// When every candidate matches nothing the unconditional fallback still
// runs and the call succeeds with an empty result; the attempt list is
// the only evidence of what was tried.
func TestSearchEmptyMailboxRunsFallback(t *testing.T) {
	fake := &fakeLister{} // every response is an empty page
	c := query.Criteria{
		Text:    "budget",
		Sender:  "boss@co.com",
		Subject: "Q3",
		Folder:  "inbox",
	}
	res, err := newExecutor(fake).Search(context.Background(), c, 10, fields.List)
	require.NoError(t, err)

	assert.Empty(t, res.Items)
	assert.Equal(t, query.StrategyFallbackRecent, res.Strategy)
	// combined, sender, subject, free text, fallback.
	assert.Len(t, res.Attempts, 5)
	assert.Len(t, fake.requests, 5)
}

// Once an earlier, more specific candidate has matched, no later
// candidate is ever issued.
func TestSearchStopsAtFirstMatch(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(2, "m")}},
	}}
	c := query.Criteria{Text: "hello", Sender: "boss@co.com", Folder: "inbox"}
	res, err := newExecutor(fake).Search(context.Background(), c, 10, fields.List)
	require.NoError(t, err)

	assert.Equal(t, query.StrategyCombined, res.Strategy)
	assert.Len(t, fake.requests, 1, "later candidates must not be issued")
}

// A transport error mid-loop is recovered; the same error on the final
// fallback is fatal.
func TestSearchFallbackFailureIsFatal(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{err: errors.New("network down")},
	}}
	_, err := newExecutor(fake).Search(context.Background(),
		query.Criteria{Folder: "inbox"}, 10, fields.List)
	assert.Error(t, err)
}

func TestSearchTransportErrorTreatedAsMiss(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{err: errors.New("timeout")},
		{page: &graph.Page{Items: items(1, "m")}},
	}}
	c := query.Criteria{Sender: "boss@co.com", Folder: "inbox"}
	res, err := newExecutor(fake).Search(context.Background(), c, 10, fields.List)
	require.NoError(t, err)

	assert.Equal(t, query.StrategyFallbackRecent, res.Strategy)
	require.Len(t, res.Attempts, 2)
	assert.NotEmpty(t, res.Attempts[0].Err)
	assert.Len(t, res.Items, 1)
}

func TestSearchRawQueryTriedFirst(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(1, "m")}},
	}}
	c := query.Criteria{RawQuery: "from:boss@co.com", Text: "ignored", Folder: "inbox"}
	res, err := newExecutor(fake).Search(context.Background(), c, 10, fields.List)
	require.NoError(t, err)

	assert.Equal(t, query.StrategyRawQuery, res.Strategy)
	require.Len(t, fake.requests, 1)
	require.NotNil(t, fake.requests[0].Shape)
	assert.Equal(t, "from:boss@co.com", fake.requests[0].Shape.Search)
}

func TestSearchPageSizeCappedByMax(t *testing.T) {
	fake := &fakeLister{steps: []step{
		{page: &graph.Page{Items: items(3, "m")}},
	}}
	_, err := newExecutor(fake).Search(context.Background(),
		query.Criteria{Sender: "boss@co.com"}, 5, fields.List)
	require.NoError(t, err)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, 5, fake.requests[0].Shape.Top)
}
