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

// Package graphhttp builds the authenticated HTTP client the mail API
// transport uses. Tokens are acquired with the client-credentials
// grant and refreshed by the oauth2 transport; an expired-token
// response from the API itself still propagates as unauthorized, since
// the client's notion of expiry is only an optimization.
package graphhttp

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/mwhelan/graphmail/internal/config"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenEnv names an environment variable holding a pre-acquired
// bearer token, which bypasses the client-credentials flow. Useful for
// development against a token minted elsewhere.
const tokenEnv = "GRAPHMAIL_TOKEN"

const (
	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	defaultScope   = "https://graph.microsoft.com/.default"
)

// New returns an HTTP client whose transport injects and refreshes
// bearer tokens for the mail API.
func New(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	if tok := os.Getenv(tokenEnv); tok != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})
		return oauth2.NewClient(ctx, src), nil
	}

	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.Errorf(
			"tenant_id, client_id and client_secret must all be configured (or set %s)", tokenEnv)
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, cfg.TenantID),
		Scopes:       []string{defaultScope},
	}
	return cc.Client(ctx), nil
}
