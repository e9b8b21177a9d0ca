// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"blitznote.com/src/http.formupload/ginform"
)

const (
	readTimeout     = 60 * time.Second
	writeTimeout    = readTimeout
	shutdownTimeout = 30 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the demo form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen on this address (overrides FORMUPLOAD_ADDR)")
	return cmd
}

// router wires the form to its middlewares.
func (a *app) router(page *formPage) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	perMinute := a.cfg.RatePerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	r.Use(ginform.RateLimit(rate.Every(time.Minute/time.Duration(perMinute)), perMinute/2))
	r.Use(ginform.Middleware(a.uploads))

	r.GET("/", page.show)
	r.POST("/", page.submit)
	return r
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, dir := range []string{a.cfg.StagingDir, a.cfg.CommittedDir()} {
		if err := a.fs.MkdirAll(dir, 0o750); err != nil {
			return errors.WithStack(err)
		}
	}
	if a.cfg.Lockdown {
		if err := a.uploads.Lockdown(a.cfg.DataDir); err != nil {
			return err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      a.router(newFormPage(a)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	served := make(chan error, 1)
	go func() {
		a.logger.Info("serving", zap.String("addr", srv.Addr))
		served <- srv.ListenAndServe()
	}()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
