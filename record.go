// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"path"
	"path/filepath"
	"strings"
)

// referenceSeparator splits the content type from the path in a serialized Record.
const referenceSeparator = '#'

// Record identifies one file by its path.
//
// Records are plain values. Every round trip reconstructs them
// from what the browser has posted back.
type Record struct {
	Path        string // Doubles as identity.
	ContentType string
	Name        string // Original filename, as supplied by the user.

	// Committed is set for files in persistent storage.
	// A Record without it points into a transaction.
	Committed bool

	// Remove marks files that are to be deleted on save (if committed),
	// or never to be persisted at all.
	Remove bool
}

// ID returns what identifies the file, which is its path.
func (r Record) ID() string { return r.Path }

// DisplayName is what a user will recognize the file by.
func (r Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return path.Base(filepath.ToSlash(r.Path))
}

// Filled is false for records that have been marked for removal.
func (r Record) Filled() bool { return !r.Remove }

// Serialize renders the record as "<content type>#<path>".
func (r Record) Serialize() string {
	return r.ContentType + string(referenceSeparator) + r.Path
}

// ParseReference is the inverse to Serialize.
//
// The string is split at the first '#', hence paths can contain any
// number of them, but content types must not. Flag Committed is left
// unset, because only the store can tell.
func ParseReference(s string) (Record, error) {
	idx := strings.IndexByte(s, referenceSeparator)
	if idx < 0 {
		return Record{}, ErrMalformedReference
	}
	return Record{
		ContentType: s[:idx],
		Path:        s[idx+1:],
	}, nil
}
