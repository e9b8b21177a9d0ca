// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"strings"
)

// Submission is what fields read posted data from.
//
// Keys are full names as posted, like "photo[new]" or "photos[current][]".
// Form frameworks implement this, or use RequestSubmission.
type Submission interface {
	// Line is the first value of 'key' in a single line.
	Line(key string) string

	// Lines is Line for every value of 'key'.
	Lines(key string) []string

	// Text is the first value of 'key' as posted.
	Text(key string) string

	// Texts is Text for every value of 'key'.
	Texts(key string) []string

	// File is the first file posted under 'key', or nil.
	File(key string) Upload

	// Files is every file posted under 'key'.
	Files(key string) []Upload

	// BypassValidation skips the validation of any remaining fields.
	BypassValidation()

	// ValidationBypassed reports whether any field called BypassValidation.
	ValidationBypassed() bool
}

// singleLine truncates at the first line break, and trims any space.
func singleLine(s string) string {
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// Keys fields post their values under.
func subKey(field, key string) string     { return field + "[" + key + "]" }
func subKeyList(field, key string) string { return field + "[" + key + "][]" }
