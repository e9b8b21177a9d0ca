// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !caddyserver1.0
// +build !caddyserver1.0

package formupload

import (
	"net/http"

	"github.com/pkg/errors"
)

// Errors returned by NewHandler for configurations it cannot work with.
var (
	errNoBaseDir = errors.New("The staging directory is missing")
	errNoPrefix  = errors.New("Prefix of transactions must not be empty")
)

// NewHandler wraps 'next', which will find a store
// using StoreFromContext on the request's context.
//
// Its responsibility is to reject invalid or formally incorrect configurations.
//
// 'next' is optional.
func NewHandler(config *Configuration, next http.Handler) (*Handler, error) {
	switch {
	case config.BaseDir == "":
		return nil, errNoBaseDir
	case config.Prefix == "":
		return nil, errNoPrefix
	}

	h := Handler{
		Next:   next,
		Config: config,
	}
	if next == nil {
		h.Next = http.NotFoundHandler()
	}
	return &h, nil
}

// Handler implements http.Handler.
type Handler struct {
	Next   http.Handler
	Config *Configuration
}

// ServeHTTP sets up a store, then defers the request to the next handler.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = h.Config.serveHTTP(w, r,
		func(w http.ResponseWriter, r *http.Request) (int, error) {
			h.Next.ServeHTTP(w, r)
			return 0, nil
		},
	)
}
