// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formupload "blitznote.com/src/http.formupload"
)

// app is what the subcommands share.
type app struct {
	cfg     Config
	fs      afero.Fs
	logger  *zap.Logger
	uploads *formupload.Configuration
}

func (a *app) init(environ map[string]string) error {
	cfg, err := LoadConfig(environ)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	a.logger = NewLogger(cfg)
	a.uploads, err = cfg.Uploads(a.fs, a.logger)
	return err
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "formupload-demo",
		Short:         "Demonstrates file fields that survive round trips",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(nil)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.AddCommand(newServeCmd(a), newGCCmd(a))
	return root
}
