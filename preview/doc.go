// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package preview renders files in place of their names.
//
// Images become thumbnails, anything else gets a tile with its extension.
// Both are inlined as data URI, hence need no handler of their own.
package preview // import "blitznote.com/src/http.formupload/preview"
