// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"time"

	"github.com/spf13/afero"
)

// idAt is the id NewTransactionID would return at 't',
// which is not guaranteed if it has been called before with a later time.
func idAt(t time.Time) TransactionID {
	return TransactionID(t.UnixNano()/int64(IDResolution) - EpochOffset)
}

// stubUpload is what a transport has received, spooled to '/spool'.
type stubUpload struct {
	fs          afero.Fs
	name        string
	contentType string
	size        int64
	err         UploadError
	tmp         string
}

func newStubUpload(fsys afero.Fs, name, contentType, content string) *stubUpload {
	u := &stubUpload{fs: fsys, name: name, contentType: contentType, size: int64(len(content))}
	if err := fsys.MkdirAll("/spool", permBitsDir); err != nil {
		panic(err)
	}
	f, err := afero.TempFile(fsys, "/spool", ".part-")
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if _, err = f.WriteString(content); err != nil {
		panic(err)
	}
	u.tmp = f.Name()
	return u
}

// failedUpload has not been received.
func failedUpload(name string, code UploadError) *stubUpload {
	return &stubUpload{name: name, contentType: "application/octet-stream", err: code}
}

func (u *stubUpload) Err() UploadError      { return u.err }
func (u *stubUpload) Name() string          { return u.name }
func (u *stubUpload) SanitizedName() string { return SanitizeFilename(u.name) }
func (u *stubUpload) ContentType() string   { return u.contentType }
func (u *stubUpload) TemporaryFile() string { return u.tmp }
func (u *stubUpload) Size() int64           { return u.size }

func (u *stubUpload) Move(fsys afero.Fs, dst string) error {
	if u.err != UploadErrOK {
		return ErrUploadNotOK
	}
	if u.tmp == "" {
		return ErrAlreadyMoved
	}
	if err := moveFile(u.fs, u.tmp, fsys, dst); err != nil {
		return err
	}
	u.tmp = ""
	return nil
}

// stubSubmission is what a form framework would pass.
type stubSubmission struct {
	values   map[string][]string
	files    map[string][]Upload
	bypassed bool
}

func newStubSubmission() *stubSubmission {
	return &stubSubmission{
		values: make(map[string][]string),
		files:  make(map[string][]Upload),
	}
}

func (s *stubSubmission) set(key string, values ...string) *stubSubmission {
	s.values[key] = values
	return s
}

func (s *stubSubmission) attach(key string, uploads ...Upload) *stubSubmission {
	s.files[key] = append(s.files[key], uploads...)
	return s
}

func (s *stubSubmission) Line(key string) string { return singleLine(s.Text(key)) }

func (s *stubSubmission) Lines(key string) []string {
	var lines []string
	for _, v := range s.values[key] {
		lines = append(lines, singleLine(v))
	}
	return lines
}

func (s *stubSubmission) Text(key string) string {
	if v := s.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (s *stubSubmission) Texts(key string) []string { return s.values[key] }

func (s *stubSubmission) File(key string) Upload {
	if f := s.files[key]; len(f) > 0 {
		return f[0]
	}
	return nil
}

func (s *stubSubmission) Files(key string) []Upload { return s.files[key] }
func (s *stubSubmission) BypassValidation()         { s.bypassed = true }
func (s *stubSubmission) ValidationBypassed() bool  { return s.bypassed }
