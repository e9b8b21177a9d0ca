// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ginform

import (
	"github.com/pkg/errors"
)

var errNoMiddleware = errors.New("ginform.Middleware has not been used with this route")
