// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ginform provides stores and submissions to handlers of gin.
package ginform // import "blitznote.com/src/http.formupload/ginform"

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	formupload "blitznote.com/src/http.formupload"
)

// Keys in gin.Context.
const (
	configKey     = "formupload.config"
	storeKey      = "formupload.store"
	submissionKey = "formupload.submission"
)

// Middleware gives every request its own store.
//
// Once the handlers are done, files of the submission that no field
// has claimed are removed, and garbage is collected.
func Middleware(cfg *formupload.Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := cfg.NewStore()
		c.Set(configKey, cfg)
		c.Set(storeKey, store)
		c.Request = c.Request.WithContext(formupload.WithStore(c.Request.Context(), store))

		defer cfg.Release(store)
		defer func() {
			if v, found := c.Get(submissionKey); found {
				_ = v.(*formupload.RequestSubmission).Close()
			}
		}()

		c.Next()
	}
}

// Store returns the store of this request, or nil without Middleware.
func Store(c *gin.Context) *formupload.TempStore {
	if v, found := c.Get(storeKey); found {
		return v.(*formupload.TempStore)
	}
	return nil
}

// Config returns what Middleware has been set up with, or nil.
func Config(c *gin.Context) *formupload.Configuration {
	if v, found := c.Get(configKey); found {
		return v.(*formupload.Configuration)
	}
	return nil
}

// Submission parses the request's form once, and returns the same result on subsequent calls.
func Submission(c *gin.Context) (*formupload.RequestSubmission, error) {
	if v, found := c.Get(submissionKey); found {
		return v.(*formupload.RequestSubmission), nil
	}
	cfg := Config(c)
	if cfg == nil {
		return nil, errNoMiddleware
	}

	s, err := cfg.NewSubmission(c.Request)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Info("cannot parse form",
				zap.String("path", c.Request.URL.Path), zap.String("ip", c.ClientIP()), zap.Error(err))
		}
		return nil, err
	}
	c.Set(submissionKey, s)
	return s, nil
}

// FieldOptions are the options of the configuration, and 'opts'.
func FieldOptions(c *gin.Context, opts ...formupload.FieldOption) []formupload.FieldOption {
	cfg := Config(c)
	if cfg == nil {
		return opts
	}
	return append(cfg.FieldOptions(), opts...)
}
