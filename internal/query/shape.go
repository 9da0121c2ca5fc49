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

package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/mwhelan/graphmail/internal/fields"

	"github.com/rs/zerolog"
)

// RequestShape is one concrete, internally consistent combination of
// query parameters. Invariant: a shape whose Filter contains an
// address-equality predicate never carries an OrderBy, because the
// backend rejects that combination.
type RequestShape struct {
	Folder     string
	AllFolders bool

	// Search is the text-search expression, sent unquoted; the
	// transport adds the outer quoting the backend requires.
	Search string

	// Filter is a boolean filter expression, predicates joined by
	// "and".
	Filter string

	// OrderBy is the sort directive, empty when sorting is precluded.
	OrderBy string

	// Select is the field projection.
	Select []string

	// Top is the requested page size.
	Top int
}

// Candidate pairs a shape with the name of the strategy that produced
// it. The names appear in result provenance and must stay stable.
type Candidate struct {
	Strategy string
	Shape    RequestShape
}

// Strategy names, most specific first.
const (
	StrategyRawQuery       = "raw-query"
	StrategyCombined       = "combined"
	StrategySenderTerm     = "single-term-sender"
	StrategyRecipientTerm  = "single-term-recipient"
	StrategySubjectTerm    = "single-term-subject"
	StrategyFreeTextTerm   = "single-term-query"
	StrategyBooleanFilters = "boolean-filters"
	StrategyFallbackRecent = "fallback-recent"
)

const defaultSort = "receivedDateTime desc"

// escapeValue doubles single quotes per the backend's string-literal
// escaping rules.
func escapeValue(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

func senderPredicate(v string) string {
	if isAddress(v) {
		return fmt.Sprintf("from/emailAddress/address eq '%s'", escapeValue(v))
	}
	return fmt.Sprintf("contains(from/emailAddress/name, '%s')", escapeValue(v))
}

func recipientPredicate(v string) string {
	if isAddress(v) {
		return fmt.Sprintf("toRecipients/any(r: r/emailAddress/address eq '%s')", escapeValue(v))
	}
	return fmt.Sprintf("toRecipients/any(r: contains(r/emailAddress/name, '%s'))", escapeValue(v))
}

func (c Criteria) flagPredicates() []string {
	var parts []string
	if c.HasAttachments != nil {
		parts = append(parts, fmt.Sprintf("hasAttachments eq %t", *c.HasAttachments))
	}
	if c.UnreadOnly {
		parts = append(parts, "isRead eq false")
	}
	return parts
}

// parseBound accepts an RFC 3339 timestamp or a plain date.
func parseBound(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// datePredicates builds the range predicates. A malformed bound is
// logged and omitted; partial criteria degrade instead of failing the
// whole request.
func (c Criteria) datePredicates(log zerolog.Logger) []string {
	var parts []string
	for _, bound := range []struct {
		value string
		op    string
	}{
		{c.ReceivedAfter, "ge"},
		{c.ReceivedBefore, "le"},
	} {
		if bound.value == "" {
			continue
		}
		t, err := parseBound(bound.value)
		if err != nil {
			log.Warn().Str("value", bound.value).Msg("malformed date bound, omitting range predicate")
			continue
		}
		parts = append(parts, fmt.Sprintf("receivedDateTime %s %s", bound.op, t.UTC().Format(time.RFC3339)))
	}
	return parts
}

// searchExpression joins the free text with a subject qualifier.
func (c Criteria) searchExpression() string {
	var parts []string
	if c.Text != "" {
		parts = append(parts, c.Text)
	}
	if c.Subject != "" {
		parts = append(parts, subjectQualifier(c.Subject))
	}
	return strings.Join(parts, " ")
}

func subjectQualifier(subject string) string {
	// An embedded double quote would end the qualifier early.
	return fmt.Sprintf("subject:%q", strings.ReplaceAll(subject, `"`, `'`))
}

func joinAnd(parts ...[]string) string {
	var all []string
	for _, p := range parts {
		all = append(all, p...)
	}
	return strings.Join(all, " and ")
}

// Candidates expands c into the ordered list of request shapes to try,
// most specific first. The list is pure data derived from c alone:
// identical criteria produce an identical list, which is what makes
// the ordering testable without executing anything. The final entry is
// always the unconditional fallback (most recent items in scope), so a
// caller running the list in order can always return something.
func Candidates(c Criteria, top int, preset fields.Preset, log zerolog.Logger) []Candidate {
	base := RequestShape{
		Folder:     c.Folder,
		AllFolders: c.AllFolders,
		Select:     fields.For(preset, log),
		Top:        top,
	}
	fallback := base
	fallback.OrderBy = defaultSort

	// The raw override bypasses every structured field.
	if c.RawQuery != "" {
		raw := base
		raw.Search = c.RawQuery
		return []Candidate{
			{Strategy: StrategyRawQuery, Shape: raw},
			{Strategy: StrategyFallbackRecent, Shape: fallback},
		}
	}

	flags := c.flagPredicates()
	dates := c.datePredicates(log)
	var out []Candidate

	// Combined: every populated field in one shape. Only worth a
	// round trip when at least two fields need to agree; with a
	// single driver it collapses into that field's single-term shape.
	if c.drivers() >= 2 {
		combined := base
		combined.Search = c.searchExpression()
		var addr []string
		if c.Sender != "" {
			addr = append(addr, senderPredicate(c.Sender))
		}
		if c.Recipient != "" {
			addr = append(addr, recipientPredicate(c.Recipient))
		}
		combined.Filter = joinAnd(addr, flags, dates)
		if len(addr) == 0 {
			combined.OrderBy = defaultSort
		}
		out = append(out, Candidate{Strategy: StrategyCombined, Shape: combined})
	}

	// Single-term candidates in priority order: sender, recipient,
	// subject, free text. Address terms go through the filter and
	// therefore drop the sort; subject and free text go through the
	// text search and keep it.
	if c.Sender != "" {
		s := base
		s.Filter = joinAnd([]string{senderPredicate(c.Sender)}, flags, dates)
		out = append(out, Candidate{Strategy: StrategySenderTerm, Shape: s})
	}
	if c.Recipient != "" {
		s := base
		s.Filter = joinAnd([]string{recipientPredicate(c.Recipient)}, flags, dates)
		out = append(out, Candidate{Strategy: StrategyRecipientTerm, Shape: s})
	}
	if c.Subject != "" {
		s := base
		s.Search = subjectQualifier(c.Subject)
		s.Filter = joinAnd(flags, dates)
		s.OrderBy = defaultSort
		out = append(out, Candidate{Strategy: StrategySubjectTerm, Shape: s})
	}
	if c.Text != "" {
		s := base
		s.Search = c.Text
		s.Filter = joinAnd(flags, dates)
		s.OrderBy = defaultSort
		out = append(out, Candidate{Strategy: StrategyFreeTextTerm, Shape: s})
	}

	// Boolean flags alone, when nothing textual matched.
	if len(flags) > 0 {
		s := base
		s.Filter = joinAnd(flags, dates)
		s.OrderBy = defaultSort
		out = append(out, Candidate{Strategy: StrategyBooleanFilters, Shape: s})
	}

	out = append(out, Candidate{Strategy: StrategyFallbackRecent, Shape: fallback})
	return out
}
