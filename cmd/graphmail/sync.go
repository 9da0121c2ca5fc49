package main

import (
	"context"
	"fmt"

	"github.com/mwhelan/graphmail/internal/delta"
	"github.com/mwhelan/graphmail/internal/statestore"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSyncCmd() *cobra.Command {
	var (
		folders []string
		reset   bool
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull changes since the last sync, or a full baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := newService(cmd)
			if err != nil {
				return err
			}
			store, err := statestore.Open(cmd.Context(), cfg.StatePath)
			if err != nil {
				return errors.Wrap(err, "unable to open state store")
			}
			defer store.Close()

			if len(folders) == 0 {
				folders = []string{cfg.Folder}
			}
			mgr := &delta.Manager{Source: svc, PageSize: cfg.PageSize, Log: log.Logger}

			// One goroutine per folder. Each folder has its own sync
			// state, so the single-writer rule holds.
			grp, ctx := errgroup.WithContext(cmd.Context())
			for _, folder := range folders {
				folder := folder
				grp.Go(func() error {
					return syncFolder(ctx, mgr, store, folder, reset, perPage)
				})
			}
			return grp.Wait()
		},
	}

	cmd.Flags().StringSliceVar(&folders, "folder", nil, "folder to sync (repeatable; default from config)")
	cmd.Flags().BoolVar(&reset, "reset", false, "discard stored sync state and start over")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "page size hint (default from config)")
	return cmd
}

func syncFolder(ctx context.Context, mgr *delta.Manager, store *statestore.Store, folder string, reset bool, perPage int) error {
	if reset {
		if err := store.Clear(ctx, folder); err != nil {
			return err
		}
	}
	st, _, err := store.Load(ctx, folder)
	if err != nil {
		return err
	}

	res, err := mgr.Sync(ctx, st, perPage)
	if err != nil {
		if errors.Cause(err) == delta.ErrResyncRequired {
			log.Warn().Str("folder", folder).
				Msg("sync token expired; run again with --reset to rebuild the baseline")
		}
		return err
	}

	upserted, removed := 0, 0
	for _, c := range res.Changes {
		if c.Kind == delta.Removed {
			removed++
			continue
		}
		upserted++
	}
	fmt.Printf("%s: %d created-or-updated, %d removed\n", folder, upserted, removed)

	if res.Truncated {
		log.Warn().Str("folder", folder).Msg("sync pass truncated; token unchanged, run sync again")
		return nil
	}
	if res.Complete {
		if err := store.Save(ctx, res.State); err != nil {
			return err
		}
	}
	return nil
}
