// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protofile

import (
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

func init() {
	IntentNew = intentNewUnix
}

// unixProtoFile is the variant that utilizes O_TMPFILE.
// Although it might seem that data is written to the parent directory itself,
// it actually goes into a nameless file.
type unixProtoFile ProtoFile

func intentNewUnix(path, filename string) (ProtoFileBehaver, error) {
	err := os.MkdirAll(path, permBitsDir)
	if err != nil {
		return nil, err
	}
	t, err := os.OpenFile(path, os.O_WRONLY|unix.O_TMPFILE, permBitsFile)
	// did it fail because…
	if err != nil {
		perr, ok := err.(*os.PathError)
		if !ok {
			return nil, err
		}
		switch perr.Err {
		case unix.EISDIR, unix.ENOENT: // … kernel does not know O_TMPFILE
			// If so, don't try it again.
			IntentNew = intentNewUnixDotted
			fallthrough
		case unix.EOPNOTSUPP: // … O_TMPFILE is not supported on this FS
			return intentNewUnixDotted(path, filename)
		default: // … something 'regular'.
			return nil, err
		}
	}
	return &unixProtoFile{
		File:      t,
		finalName: filepath.Join(path, filename),
	}, nil
}

// Zap is a NOP because O_TMPFILE files that have not been named get discarded anyway.
func (p *unixProtoFile) Zap() error {
	if p.persisted {
		return nil
	}
	return ignoreClosed(p.File.Close())
}

// Persist gives the file a name.
//
// Nameless files can be identified using tuple (PID, FD) and named
// by linking the FD to a name in the filesystem on which it had been opened.
func (p *unixProtoFile) Persist() error {
	if p.persisted {
		return nil
	}
	err := p.File.Sync()
	if err != nil {
		return err
	}

	oldpath := "/proc/self/fd/" + strconv.FormatUint(uint64(p.File.Fd()), 10)
	err = unix.Linkat(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, p.finalName, unix.AT_SYMLINK_FOLLOW)
	if err == unix.EEXIST { // Someone claimed our name!
		finfo, err2 := os.Stat(p.finalName)
		if err2 == nil && !finfo.IsDir() {
			_ = os.Remove(p.finalName) // To emulate the behaviour of Create we will "overwrite" the other file.
			err = unix.Linkat(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, p.finalName, unix.AT_SYMLINK_FOLLOW)
		}
	}
	// 'linkat' catches many of the errors 'os.Create' would throw,
	// only with O_TMPFILE at a later point in the file's lifecycle.
	if err != nil {
		return &os.LinkError{Op: "linkat", Old: oldpath, New: p.finalName, Err: err}
	}
	p.persisted = true
	return p.File.Close()
}

func (p *unixProtoFile) SizeWillBe(numBytes uint64) error {
	return fallocate(int(p.File.Fd()), numBytes)
}
