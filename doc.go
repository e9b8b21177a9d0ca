// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package formupload implements file fields for HTML forms that span
// more than one round trip.
//
// A field can hold nothing, a file that has already been persisted
// ("committed"), or a file that has been received but still sits in a
// staging directory, the "transaction". Files are moved into the
// transaction as soon as they arrive. Should the form be rejected for
// an unrelated reason, the next round trip carries a reference to the
// staged file and the user is not asked to select it again.
//
// The transaction is a directory like
//
//  /var/tmp/upload-669932181976/
//
// whose number is derived from the time it has been created,
// with a resolution of IDResolution. That is how garbage collection
// tells stale transactions from fresh ones without any bookkeeping.
//
// Per field, these keys are exchanged with the browser:
//
//  name[new]          file part, "name[new][]" with multiple files
//  name[current]      "<content type>#<path>", "name[current][]" with multiple files
//  name[remove]       any non-empty value removes the file
//  name[use][]        checkboxes; an unchecked file is dropped
//  name[preload]      uploads without finishing the form
//  name[transaction]  the transaction id
//  name[signature]    optional, HMAC over the transaction id
//
// If the operating- and filesystem supports it, files that need to be
// copied between devices will not appear in the observable namespace
// before they have been written and closed. See package protofile.
package formupload // import "blitznote.com/src/http.formupload"
