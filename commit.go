// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Commit moves a staged file into persistent storage at 'dstDir'.
//
// 'name' defaults to the sanitized display name of the file.
// Records that have been committed before are returned unaltered.
// Those marked for removal result in ErrUnexpectedValue: they must not be persisted.
func Commit(fsys afero.Fs, r Record, dstDir, name string) (Record, error) {
	switch {
	case r.Remove:
		return Record{}, ErrUnexpectedValue
	case r.Committed:
		return r, nil
	}
	if name == "" {
		name = SanitizeFilename(r.DisplayName())
	}
	if err := fsys.MkdirAll(dstDir, permBitsDir); err != nil {
		return Record{}, errors.WithStack(err)
	}

	dst := filepath.Join(dstDir, name)
	if err := moveFile(fsys, r.Path, fsys, dst); err != nil {
		return Record{}, err
	}
	return Record{
		Path:        dst,
		ContentType: r.ContentType,
		Name:        r.Name,
		Committed:   true,
	}, nil
}

// Discard deletes a committed file that has been marked for removal.
//
// Anything else is left alone, because staged files go with their transaction.
// A file that is gone already is not an error.
func Discard(fsys afero.Fs, r Record) error {
	if !r.Committed || !r.Remove {
		return nil
	}
	err := fsys.Remove(r.Path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return errors.WithStack(err)
}
