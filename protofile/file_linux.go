// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protofile

import (
	"golang.org/x/sys/unix"
)

// SizeWillBe asks the filesystem to reserve some space for this file's contents.
// This could result in a sparse file (if you wrote less than anticipated)
// or shrink the file.
func (p *generalizedProtoFile) SizeWillBe(numBytes uint64) error {
	return fallocate(int(p.File.Fd()), numBytes)
}

// fallocate reserves space, and silently does nothing on filesystems that don't support this.
func fallocate(fd int, numBytes uint64) error {
	if numBytes <= reserveFileSizeThreshold {
		return nil
	}

	if numBytes <= maxInt64 {
		err := unix.Fallocate(fd, 0, 0, int64(numBytes))
		if err == unix.EOPNOTSUPP {
			return nil
		}
		if err == nil {
			// These are best-effort, so we don't care about any errors.
			_ = unix.Fadvise(fd, 0, int64(numBytes), unix.FADV_SEQUENTIAL)
		}
		return err
	}

	// Yes, every Exbibyte counts.
	err := unix.Fallocate(fd, 0, 0, maxInt64)
	if err == unix.EOPNOTSUPP {
		return nil
	}
	if err != nil {
		return err
	}
	return unix.Fallocate(fd, 0, maxInt64, int64(numBytes-maxInt64))
}
