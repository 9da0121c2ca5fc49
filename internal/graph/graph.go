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

// Package graph is the transport for the remote mailbox's OData REST
// API: wire types, the request union, and an HTTP client that speaks
// the retrieval and delta endpoints this engine consumes.
package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mwhelan/graphmail/internal/query"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// The backend throttles per app per mailbox; stay under the
	// documented budget with headroom for other clients.
	rateLimitPerSecond = 4
	rateLimitBurst     = 10
)

// Service issues requests against the mail API. All calls wait on the
// embedded limiter before going to the network.
type Service struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL points the service at a different API root, e.g. a test
// server.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.base = strings.TrimRight(u, "/") }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithRateLimit overrides the default request budget.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Service) { s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// New returns a Service using client for transport. The client is
// expected to carry authentication (see the graphhttp package).
func New(client *http.Client, opts ...Option) *Service {
	s := &Service{
		base:    DefaultBaseURL,
		client:  client,
		limiter: rate.NewLimiter(rateLimitPerSecond, rateLimitBurst),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List issues one retrieval. Fresh shapes are encoded into the list
// endpoint's query parameters; cursor requests are issued verbatim,
// with no parameters added.
func (s *Service) List(ctx context.Context, req Request) (*Page, error) {
	if !req.Retrieval() {
		return nil, errors.Errorf("graph: refusing to list with a %s request", req.Method)
	}
	var u string
	switch {
	case req.IsCursor():
		u = req.Cursor
	case req.Shape != nil:
		u = s.listURL(*req.Shape)
	default:
		return nil, errors.New("graph: request carries neither a shape nor a cursor")
	}
	var body listResponse
	if err := s.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	return &Page{Items: body.Value, NextCursor: body.NextLink, TotalCount: body.Count}, nil
}

func (s *Service) listURL(shape query.RequestShape) string {
	path := s.base + "/me/messages"
	if !shape.AllFolders {
		folder := shape.Folder
		if folder == "" {
			folder = "inbox"
		}
		path = s.base + "/me/mailFolders/" + url.PathEscape(folder) + "/messages"
	}
	q := url.Values{}
	if shape.Search != "" {
		// The $search value is a quoted expression; embedded quotes
		// (subject qualifiers) are backslash-escaped.
		q.Set("$search", `"`+strings.ReplaceAll(shape.Search, `"`, `\"`)+`"`)
	}
	if shape.Filter != "" {
		q.Set("$filter", shape.Filter)
	}
	if shape.OrderBy != "" {
		q.Set("$orderby", shape.OrderBy)
	}
	if len(shape.Select) > 0 {
		q.Set("$select", strings.Join(shape.Select, ","))
	}
	if shape.Top > 0 {
		q.Set("$top", strconv.Itoa(shape.Top))
	}
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	return path
}

// DeltaList starts a delta sync pass over folder.
func (s *Service) DeltaList(ctx context.Context, folder string, selectFields []string, top int) (*DeltaPage, error) {
	if folder == "" {
		folder = "inbox"
	}
	path := s.base + "/me/mailFolders/" + url.PathEscape(folder) + "/messages/delta"
	q := url.Values{}
	if len(selectFields) > 0 {
		q.Set("$select", strings.Join(selectFields, ","))
	}
	if top > 0 {
		q.Set("$top", strconv.Itoa(top))
	}
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	return s.delta(ctx, path)
}

// DeltaNext follows a continuation cursor or a durable delta token.
// Both are opaque URLs that already carry their own parameters; no
// others may be attached.
func (s *Service) DeltaNext(ctx context.Context, link string) (*DeltaPage, error) {
	if link == "" {
		return nil, errors.New("graph: empty delta link")
	}
	return s.delta(ctx, link)
}

func (s *Service) delta(ctx context.Context, u string) (*DeltaPage, error) {
	var body listResponse
	if err := s.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	return &DeltaPage{Items: body.Value, NextLink: body.NextLink, DeltaLink: body.DeltaLink}, nil
}

func (s *Service) getJSON(ctx context.Context, u string, out interface{}) error {
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return errors.Wrap(err, "graph: building request")
		}
		req.Header.Set("Accept", "application/json")
		s.log.Debug().Str("url", u).Msg("graph request")
		resp, err := s.client.Do(req)
		if err != nil {
			return errors.Wrap(err, "graph: request failed")
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			// The limiter spaces out the retry.
			s.log.Warn().Str("url", u).Msg("throttled, retrying")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			err := decodeError(resp)
			resp.Body.Close()
			return err
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return errors.Wrap(err, "graph: decoding response")
		}
		return nil
	}
}

func decodeError(resp *http.Response) error {
	var oe odataError
	// An empty or non-JSON body leaves the code blank, which still
	// maps to a status-driven outcome below.
	_ = json.NewDecoder(resp.Body).Decode(&oe)
	code, msg := oe.Error.Code, oe.Error.Message

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if msg == "" {
			return ErrUnauthorized
		}
		return errors.Wrap(ErrUnauthorized, msg)
	case resp.StatusCode == http.StatusGone || isResyncCode(code):
		if msg == "" {
			return ErrResyncRequired
		}
		return errors.Wrap(ErrResyncRequired, msg)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &RequestRejectedError{StatusCode: resp.StatusCode, Code: code, Message: msg}
	default:
		return errors.Errorf("graph: server error %d (%s): %s", resp.StatusCode, code, msg)
	}
}
