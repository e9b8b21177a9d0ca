// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protofile

import (
	"golang.org/x/sys/unix"
)

// Is used with Linux if O_TMPFILE didn't work.
// Utilizes Linux facilities that prevent tampering with file-contents.
type unixDottedProtoFile struct {
	*generalizedProtoFile
}

// Getting a lease on a file will result in the kernel notifying us about
// any side effects (e.g. other processes) breaking that lease.
// The signal RT_SIGNAL_LEASE is for that, but we won't use it here.
// We're after the benefit of the kernel halting our 'write' call rather than
// killing our process.

// Utilizes the kernel's file locking mechanisms.
// A different process watching file (creation) events would ideally
// 'open' with O_NONBLOCK and notice its mistake (if it opened it prematurely)
// by getting a EWOULDBLOCK due to the lease.
func intentNewUnixDotted(path, filename string) (ProtoFileBehaver, error) {
	orig, err := intentNewUniversal(path, filename)
	if err != nil {
		return nil, err
	}
	g := orig.(*generalizedProtoFile)

	// An error is not expected because we created that file, with a random name;
	// - either the kernel does not support locking at all and the error can be ignored anyway
	// - or anything malevolent is locking our file.
	_, _ = unix.FcntlInt(g.File.Fd(), unix.F_SETLEASE, unix.F_WRLCK) // WRLCK includes RDLCK

	return unixDottedProtoFile{generalizedProtoFile: g}, nil
}

func (p unixDottedProtoFile) Zap() error {
	if p.persisted {
		return nil
	}
	_, _ = unix.FcntlInt(p.File.Fd(), unix.F_SETLEASE, unix.F_UNLCK)
	return p.generalizedProtoFile.Zap()
}

func (p unixDottedProtoFile) Persist() error {
	if p.persisted {
		return nil
	}
	_, _ = unix.FcntlInt(p.File.Fd(), unix.F_SETLEASE, unix.F_UNLCK)
	return p.generalizedProtoFile.Persist()
}
