// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// unveilReasons explain the errno values unveil(2) is documented to return.
var unveilReasons = map[syscall.Errno]string{
	syscall.E2BIG:  "too many paths have been unveiled",
	syscall.ENOENT: "a directory in the path does not exist",
	syscall.EINVAL: "invalid permissions",
	syscall.EPERM:  "the process has been locked down already",
}

func unveilFailed(err error, subject string) error {
	if err == nil {
		return nil
	}
	if errno, ok := err.(syscall.Errno); ok {
		if reason, found := unveilReasons[errno]; found {
			return errors.Wrapf(err, "unveil %s: %s", subject, reason)
		}
	}
	return errors.Wrapf(err, "unveil %s", subject)
}

// unveil keeps 'path' accessible with permissions 'perm'.
func unveil(path, perm string) error {
	return unveilFailed(unix.Unveil(path, perm), "'"+path+"'")
}

// unveilBlock makes anything not unveiled inaccessible. Any later unveil fails.
func unveilBlock() error {
	return unveilFailed(unix.UnveilBlock(), "(block)")
}
