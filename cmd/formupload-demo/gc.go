// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGCCmd(a *app) *cobra.Command {
	var maxCount int

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Removes stale transactions from the staging directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-count") {
				a.uploads.GCMaxCount = maxCount
			}
			n, err := a.collectGarbage(time.Now())
			cmd.Printf("removed %d transaction(s)\n", n)
			return err
		},
	}
	cmd.Flags().IntVar(&maxCount, "max-count", 0, "remove at most this many transactions (overrides FORMUPLOAD_GC_MAX_COUNT)")
	return cmd
}

func (a *app) collectGarbage(now time.Time) (int, error) {
	store := a.uploads.NewStore()
	n, err := store.CollectGarbage(now)
	if err != nil {
		a.logger.Error("garbage collection failed", zap.Int("removed", n), zap.Error(err))
		return n, err
	}
	a.logger.Info("garbage collection", zap.String("dir", a.uploads.BaseDir), zap.Int("removed", n))
	return n, nil
}
