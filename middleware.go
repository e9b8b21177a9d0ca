// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type storeContextKey struct{}

// WithStore returns a context that carries the store.
func WithStore(ctx context.Context, s *TempStore) context.Context {
	return context.WithValue(ctx, storeContextKey{}, s)
}

// StoreFromContext returns the store the handler has set up for the request.
func StoreFromContext(ctx context.Context) (*TempStore, bool) {
	s, ok := ctx.Value(storeContextKey{}).(*TempStore)
	return s, ok
}

// serveHTTP provides 'next' with a store, and collects garbage once it is done.
func (c *Configuration) serveHTTP(w http.ResponseWriter, r *http.Request,
	next func(http.ResponseWriter, *http.Request) (int, error),
) (int, error) {
	store := c.NewStore()
	defer c.Release(store)

	return next(w, r.WithContext(WithStore(r.Context(), store)))
}

// Release is where stores get disposed of, at the end of a request.
//
// Transactions of other requests that have gone stale are removed.
// The store's own transaction is left alone. Errors are logged only.
func (c *Configuration) Release(store *TempStore) {
	n, err := store.CollectGarbage(time.Now())
	if err != nil {
		c.logger().Error("garbage collection failed", zap.Error(err))
		return
	}
	if n > 0 {
		c.logger().Debug("garbage collection", zap.Int("removed", n))
	}
}
