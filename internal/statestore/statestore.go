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

// Package statestore persists delta sync positions between runs, one
// row per folder. The engine itself only ever sees caller-held
// delta.State values; this store is how the CLI is that caller.
package statestore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mwhelan/graphmail/internal/delta"

	"github.com/pkg/errors"
)

var createTableSQL = []string{
	// One row per synced folder. The token is the durable delta
	// token from the last completed pass; rows are deleted outright
	// when the backend demands a resync.
	`
CREATE TABLE IF NOT EXISTS sync_state (
folder TEXT NOT NULL PRIMARY KEY,
token TEXT NOT NULL,
updated_at TEXT NOT NULL
);`,
}

// Store is a sqlite-backed home for sync state.
type Store struct {
	db *sql.DB
}

func dsnFromPath(path string, addValues url.Values) (string, error) {
	var u *url.URL
	if !strings.HasPrefix(path, "file:") {
		u = &url.URL{Scheme: "file", Path: path}
	} else {
		var err error
		u, err = url.Parse(path)
		if err != nil {
			return "", err
		}
	}
	values := u.Query()
	for k, v := range addValues {
		for _, item := range v {
			values.Add(k, item)
		}
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// Open opens (creating if necessary) the state database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	// The default 5 second _busy_timeout is too short in practice;
	// go with 5 minutes.
	busyTimeout := int(5*time.Minute) / int(time.Millisecond)

	dsn, err := dsnFromPath(path, url.Values{
		"_busy_timeout": {fmt.Sprintf("%d", busyTimeout)}})
	if err != nil {
		return nil, errors.Wrapf(err, "Open(%q) failed: could not form a DB DSN from the given path", path)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "Open(%q) failed: could not open database at %q", path, dsn)
	}
	for _, stmt := range createTableSQL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "Open(%q) failed: could not initialize schema", path)
		}
	}
	return &Store{db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the stored state for folder. ok is false when no pass
// has completed for the folder yet, which is not an error.
func (s *Store) Load(ctx context.Context, folder string) (st delta.State, ok bool, err error) {
	st = delta.State{Folder: folder}
	const q = `SELECT token FROM sync_state WHERE folder = $1`
	row := s.db.QueryRowContext(ctx, q, folder)
	if err := row.Scan(&st.Token); err != nil {
		if err == sql.ErrNoRows {
			return st, false, nil
		}
		return st, false, errors.Wrapf(err, "loading sync state for folder %q", folder)
	}
	return st, true, nil
}

// Save upserts the state for its folder.
func (s *Store) Save(ctx context.Context, st delta.State) error {
	if st.Folder == "" {
		return errors.New("statestore: refusing to save state without a folder")
	}
	const q = `INSERT INTO sync_state (folder, token, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (folder) DO UPDATE SET (token, updated_at) = ($2, $3)`
	_, err := s.db.ExecContext(ctx, q, st.Folder, st.Token, time.Now().UTC().Format(time.RFC3339))
	return errors.Wrapf(err, "saving sync state for folder %q", st.Folder)
}

// Clear discards the stored state for folder, forcing the next pass to
// be an initial sync. Clearing an absent row is a no-op.
func (s *Store) Clear(ctx context.Context, folder string) error {
	const q = `DELETE FROM sync_state WHERE folder = $1`
	_, err := s.db.ExecContext(ctx, q, folder)
	return errors.Wrapf(err, "clearing sync state for folder %q", folder)
}
