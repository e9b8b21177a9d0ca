// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"go.uber.org/zap"
)

// Lockdown restricts the process to the staging and spool directories,
// and to 'also', where it may read, write, and create files.
//
// Only OpenBSD implements this, using unveil(2). Elsewhere it is a nop.
// Call it once, after everything that needs other paths has been set up.
func (c *Configuration) Lockdown(also ...string) error {
	paths := append([]string{c.BaseDir, c.spoolDir()}, also...)
	for _, p := range paths {
		if err := unveil(p, "rwc"); err != nil {
			return err
		}
		c.logger().Debug("unveiled", zap.String("path", p))
	}
	return unveilBlock()
}
