// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"github.com/pkg/errors"
)

// Errors returned by stores and fields.
//
// These indicate either invalid input that has been tampered with,
// or a programming error. Problems with any individual file are
// reported as field errors instead.
var (
	ErrInvalidTransactionID = errors.New("Transaction id must be a positive integer")
	ErrMalformedReference   = errors.New("Malformed file reference, expected '<content type>#<path>'")
	ErrUnexpectedValue      = errors.New("Unexpected value")
	ErrTransactionForged    = errors.New("Transaction id has not been signed by us")
	ErrUploadNotOK          = errors.New("Upload has failed and cannot be moved")
	ErrAlreadyMoved         = errors.New("Upload has already been moved")
)
