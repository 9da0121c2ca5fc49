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

// Package config loads the YAML configuration file.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config is the application configuration.
type Config struct {
	// TenantID, ClientID and ClientSecret identify the app
	// registration used for client-credentials auth.
	TenantID     string `koanf:"tenant_id"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`

	// BaseURL overrides the API root, mainly for testing.
	BaseURL string `koanf:"base_url"`

	// Folder is the default scope folder.
	Folder string `koanf:"folder"`

	// PageSize is the per-request page size hint.
	PageSize int `koanf:"page_size"`

	// StatePath is where sync tokens are persisted.
	StatePath string `koanf:"state_path"`

	// RateLimit caps outbound requests per second.
	RateLimit float64 `koanf:"rate_limit"`
}

// Default returns the configuration used when a key is absent.
func Default() Config {
	return Config{
		Folder:    "inbox",
		PageSize:  25,
		StatePath: "graphmail.db",
		RateLimit: 4,
	}
}

// Load reads path and merges it over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "loading config file %q", path)
	}
	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %q", path)
	}
	return &cfg, nil
}
