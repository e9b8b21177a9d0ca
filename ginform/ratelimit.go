// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ginform

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterTTL is how long a client's bucket survives without requests.
const limiterTTL = 5 * time.Minute

type clientLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

type limiterPool struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for k, l := range p.clients {
		if now.After(l.expires) {
			delete(p.clients, k)
		}
	}

	l, found := p.clients[key]
	if !found {
		l = &clientLimiter{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.clients[key] = l
	}
	l.expires = now.Add(limiterTTL)
	return l.limiter
}

// RateLimit limits requests per client IP using a token bucket,
// which is refilled at 'limit' and holds up to 'burst' tokens.
//
// Only requests that could carry files are counted: GET and HEAD pass.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	if burst < 1 {
		burst = 1
	}
	pool := &limiterPool{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			c.Next()
			return
		}
		if !pool.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
