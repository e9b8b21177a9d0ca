// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"blitznote.com/src/http.formupload/protofile"
)

const (
	permBitsDir  = 0750
	permBitsFile = 0640
)

func isOsFs(fsys afero.Fs) bool {
	_, ok := fsys.(*afero.OsFs)
	return ok
}

// isCrossDevice is true if a rename failed only because source and destination are on different filesystems.
func isCrossDevice(err error) bool {
	if le, ok := err.(*os.LinkError); ok {
		return le.Err == syscall.EXDEV
	}
	return false
}

// moveFile renames, or copies and removes, 'src' to 'dst'.
//
// Copies to the operating system's filesystem are written as protofile,
// so they emerge in their final place only once complete.
func moveFile(srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error {
	if srcFs == dstFs || (isOsFs(srcFs) && isOsFs(dstFs)) {
		err := dstFs.Rename(src, dst)
		if err == nil {
			return nil
		}
		if !isCrossDevice(err) {
			return errors.WithStack(err)
		}
	}

	in, err := srcFs.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	if isOsFs(dstFs) {
		err = persistFrom(in, dst)
	} else {
		err = copyFrom(dstFs, in, dst)
	}
	if err != nil {
		return err
	}
	in.Close()
	return errors.WithStack(srcFs.Remove(src))
}

func persistFrom(in afero.File, dst string) error {
	w, err := protofile.IntentNew(filepath.Dir(dst), filepath.Base(dst))
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Zap()

	if finfo, err := in.Stat(); err == nil && finfo.Size() > 0 {
		_ = w.SizeWillBe(uint64(finfo.Size()))
	}
	if _, err = io.Copy(w, in); err != nil {
		return errors.Wrapf(err, "copying to '%s'", dst)
	}
	return errors.WithStack(w.Persist())
}

func copyFrom(dstFs afero.Fs, in io.Reader, dst string) error {
	out, err := dstFs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, permBitsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		_ = dstFs.Remove(dst)
		return errors.Wrapf(err, "copying to '%s'", dst)
	}
	return errors.WithStack(out.Close())
}
