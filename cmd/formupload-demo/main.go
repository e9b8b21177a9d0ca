// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command formupload-demo serves a form with file fields,
// and sweeps stale transactions.
//
// It is configured through environment variables, see Config.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
