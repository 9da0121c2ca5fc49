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

import "time"

// Address is an email address with an optional display name.
type Address struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// Recipient wraps an Address the way the message resource does.
type Recipient struct {
	EmailAddress Address `json:"emailAddress"`
}

// Removed is the marker a delta response puts on a record instead of
// field data when the item was deleted from the scope.
type Removed struct {
	Reason string `json:"reason,omitempty"`
}

// Item is a message resource, projected down to whatever field
// projection the request asked for. Pointer fields distinguish "not
// requested" from a zero value.
type Item struct {
	ID                string      `json:"id"`
	Subject           string      `json:"subject,omitempty"`
	BodyPreview       string      `json:"bodyPreview,omitempty"`
	Body              *ItemBody   `json:"body,omitempty"`
	From              *Recipient  `json:"from,omitempty"`
	Sender            *Recipient  `json:"sender,omitempty"`
	ToRecipients      []Recipient `json:"toRecipients,omitempty"`
	CcRecipients      []Recipient `json:"ccRecipients,omitempty"`
	ReplyTo           []Recipient `json:"replyTo,omitempty"`
	ReceivedDateTime  *time.Time  `json:"receivedDateTime,omitempty"`
	SentDateTime      *time.Time  `json:"sentDateTime,omitempty"`
	IsRead            *bool       `json:"isRead,omitempty"`
	IsDraft           *bool       `json:"isDraft,omitempty"`
	HasAttachments    *bool       `json:"hasAttachments,omitempty"`
	Importance        string      `json:"importance,omitempty"`
	ConversationID    string      `json:"conversationId,omitempty"`
	InternetMessageID string      `json:"internetMessageId,omitempty"`
	MessageHeaders    []Header    `json:"internetMessageHeaders,omitempty"`
	ParentFolderID    string      `json:"parentFolderId,omitempty"`
	Categories        []string    `json:"categories,omitempty"`
	WebLink           string      `json:"webLink,omitempty"`

	// Removed is only present on delta records.
	Removed *Removed `json:"@removed,omitempty"`
}

// ItemBody is a message body with its content type.
type ItemBody struct {
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content,omitempty"`
}

// Header is a single transport header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Page is one response to a list retrieval: the items in server order,
// an opaque continuation cursor when more pages exist, and the
// total-count hint when the backend supplies one.
type Page struct {
	Items      []Item
	NextCursor string
	TotalCount *int64
}

// DeltaPage is one response within a delta sync pass. Exactly one of
// NextLink (more pages of the same pass) or DeltaLink (pass complete,
// durable token for the next pass) is expected to be set.
type DeltaPage struct {
	Items     []Item
	NextLink  string
	DeltaLink string
}

// listResponse is the wire shape shared by list and delta responses.
type listResponse struct {
	Value     []Item `json:"value"`
	NextLink  string `json:"@odata.nextLink,omitempty"`
	DeltaLink string `json:"@odata.deltaLink,omitempty"`
	Count     *int64 `json:"@odata.count,omitempty"`
}
