// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package protofile implements temporary files that don't appear in
// filesystem namespace until closed.
//
// Unfortunately this only works on most, not all, Linux systems.
// For example, ancient Linux versions don't know flag O_TMPFILE.
// In such and similar cases a graceful degradiation is attempted,
// which worst-case results in the well-known dot-files (like ".gitignore").
//
// Unlike with traditional files with {CreateNew, Write, Close},
// these have a lifecycle described by {IntentNew, Write, Persist or Zap}.
// While a traditional file "emerges" the instant it is created with a name,
// "proto files" are named only after having been "persisted" (which closes them).
//
// Staged uploads that cross devices on their way into a transaction
// or into persistent storage are written this way.
package protofile // import "blitznote.com/src/http.formupload/protofile"
