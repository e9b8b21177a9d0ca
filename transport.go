// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"github.com/spf13/afero"
)

// UploadError tells why a file has not been received.
type UploadError int

// Codes of UploadError. Any file but those with UploadErrOK is to be discarded.
const (
	UploadErrOK        UploadError = iota
	UploadErrIniSize               // Exceeds the limit of the server.
	UploadErrFormSize              // Exceeds the limit of the field.
	UploadErrPartial               // Body ended prematurely.
	UploadErrNoFile                // Nothing has been selected.
	UploadErrNoTmpDir              // The spool directory is missing.
	UploadErrCantWrite             // Writing to the spool directory failed.
	UploadErrExtension             // Rejected by filename or content type.
)

var uploadErrorMessages = map[UploadError]string{
	UploadErrIniSize:   "The uploaded file exceeds the maximum file size allowed by the server",
	UploadErrFormSize:  "The uploaded file exceeds the maximum file size specified in the form",
	UploadErrPartial:   "The uploaded file was only partially uploaded",
	UploadErrNoFile:    "No file was uploaded",
	UploadErrNoTmpDir:  "Missing a temporary folder",
	UploadErrCantWrite: "Failed to write file to disk",
	UploadErrExtension: "File upload stopped by extension",
}

const msgUnknownUploadError = "Unknown upload error"

// Message is the English description, meant to be translated.
//
// There is none for UploadErrOK: asking for it is a logic error, and panics.
func (e UploadError) Message() string {
	if e == UploadErrOK {
		panic("formupload: UploadErrOK is not an error")
	}
	if msg, found := uploadErrorMessages[e]; found {
		return msg
	}
	return msgUnknownUploadError
}

func (e UploadError) Error() string {
	if e == UploadErrOK {
		return "OK"
	}
	return e.Message()
}

// Upload is a file as received by a transport,
// which the transport has spooled somewhere already.
type Upload interface {
	// Err is UploadErrOK if the file has been received completely.
	Err() UploadError

	// Name is the original filename, without any directories.
	Name() string

	// SanitizedName is Name made safe for use in filesystems.
	SanitizedName() string

	ContentType() string

	// TemporaryFile is where the file has been spooled to.
	TemporaryFile() string

	Size() int64

	// Move transfers the file to 'dst' in filesystem 'fsys'.
	// Afterwards TemporaryFile is no longer valid.
	Move(fsys afero.Fs, dst string) error
}

// FormatUploadError renders a failed upload as "<filename>: <message>".
func FormatUploadError(u Upload) string {
	return formatUploadError(u.Name(), u.Err(), nopTranslator{})
}

func formatUploadError(name string, code UploadError, t Translator) string {
	return name + ": " + t.Translate(code.Message())
}
