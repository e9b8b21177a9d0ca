// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Errors ParseRequest fails the whole request with.
var (
	ErrMalformedContent = errors.New("Malformed Content")
	ErrValueTooLarge    = errors.New("Form value exceeds the size limit")
)

// RequestSubmission implements Submission for a http.Request.
type RequestSubmission struct {
	values   map[string][]string
	files    map[string][]*spooledUpload
	bypassed bool
}

var _ Submission = (*RequestSubmission)(nil)

// ParseRequest reads the form of 'r'.
//
// A "multipart/form-data" body is streamed: values are kept in memory,
// files are spooled to cfg.SpoolDir. Files that cannot be received are
// kept as well, with an UploadError, to be reported by their fields.
// Other bodies are parsed using http.Request.ParseForm.
func ParseRequest(r *http.Request, cfg *Configuration) (*RequestSubmission, error) {
	s := &RequestSubmission{
		values: make(map[string][]string),
		files:  make(map[string][]*spooledUpload),
	}

	mr, err := r.MultipartReader()
	if err == http.ErrNotMultipart {
		if err = r.ParseForm(); err != nil {
			return nil, errors.Wrap(ErrMalformedContent, err.Error())
		}
		for k, v := range r.Form {
			s.values[k] = append(s.values[k], v...)
		}
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(ErrMalformedContent, err.Error())
	}

	var truncated bool
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if truncated {
				// The last file has already been flagged as partial.
				break
			}
			s.Close()
			return nil, errors.Wrap(ErrMalformedContent, err.Error())
		}

		key := part.FormName()
		switch {
		case key == "":
			// not a form field
		case hasFilename(part):
			if u := spool(part, cfg); u != nil {
				s.files[key] = append(s.files[key], u)
				truncated = u.err == UploadErrPartial
			}
		default:
			v, err := readValue(part, cfg.MaxValueSize)
			if err != nil {
				part.Close()
				s.Close()
				return nil, err
			}
			s.values[key] = append(s.values[key], v)
		}
		part.Close()
	}

	return s, nil
}

// hasFilename is true for parts browsers send for input elements of type 'file',
// even if no file has been selected.
func hasFilename(part *multipart.Part) bool {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false
	}
	_, found := params["filename"]
	return found
}

func readValue(part *multipart.Part, limit int64) (string, error) {
	var buf bytes.Buffer
	r := io.Reader(part)
	if limit > 0 {
		r = io.LimitReader(part, limit+1)
	}
	n, err := buf.ReadFrom(r)
	if err != nil {
		return "", errors.Wrap(ErrMalformedContent, err.Error())
	}
	if limit > 0 && n > limit {
		return "", ErrValueTooLarge
	}
	return buf.String(), nil
}

// errorRecordingWriter remembers the first error on write,
// so it can be told apart from failing reads.
type errorRecordingWriter struct {
	w   io.Writer
	err error
}

func (e *errorRecordingWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}

// spool writes one file to the spool directory.
//
// Returns nil if no file had been selected in the browser.
func spool(part *multipart.Part, cfg *Configuration) *spooledUpload {
	name := baseName(part.FileName())
	u := &spooledUpload{
		name:        name,
		sanitized:   SanitizeFilename(name),
		contentType: part.Header.Get("Content-Type"),
		fs:          cfg.Fs,
	}
	if u.contentType == "" {
		u.contentType = "application/octet-stream"
	}

	switch {
	case name == "":
		if n, _ := io.Copy(io.Discard, part); n == 0 {
			return nil
		}
		u.err = UploadErrNoFile
		return u
	case !isAcceptableUpload(name, u.contentType, cfg):
		u.err = UploadErrExtension
		_, _ = io.Copy(io.Discard, part)
		return u
	}

	f, err := afero.TempFile(cfg.Fs, cfg.spoolDir(), ".part-")
	if err != nil {
		u.err = UploadErrCantWrite
		if os.IsNotExist(errors.Cause(err)) {
			u.err = UploadErrNoTmpDir
		}
		cfg.logger().Error("cannot spool upload", zap.String("name", name), zap.Error(err))
		_, _ = io.Copy(io.Discard, part)
		return u
	}
	u.tmp = f.Name()

	var r io.Reader = part
	if cfg.MaxFilesize > 0 {
		r = io.LimitReader(part, int64(cfg.MaxFilesize)+1)
	}
	w := &errorRecordingWriter{w: f}
	u.size, err = io.Copy(w, r)
	closeErr := f.Close()
	switch {
	case w.err != nil || (err == nil && closeErr != nil):
		u.err = UploadErrCantWrite
	case err != nil:
		u.err = UploadErrPartial
	case cfg.MaxFilesize > 0 && uint64(u.size) > cfg.MaxFilesize:
		u.err = UploadErrIniSize
		_, _ = io.Copy(io.Discard, part)
	}
	if u.err != UploadErrOK {
		u.discard()
	}
	return u
}

func isAcceptableUpload(name, contentType string, cfg *Configuration) bool {
	if (cfg.RestrictFilenamesTo != nil || cfg.UnicodeForm != nil) &&
		!IsAcceptableFilename(name, cfg.RestrictFilenamesTo, cfg.unicodeForm()) {
		return false
	}
	if len(cfg.AllowedContentTypes) == 0 {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return matchesContentType(mediaType, cfg.AllowedContentTypes)
}

// matchesContentType understands wildcards like "image/*".
func matchesContentType(mediaType string, patterns []string) bool {
	for _, p := range patterns {
		if p == mediaType || p == "*/*" ||
			(strings.HasSuffix(p, "/*") && strings.HasPrefix(mediaType, p[:len(p)-1])) {
			return true
		}
	}
	return false
}

// Line implements the Submission interface.
func (s *RequestSubmission) Line(key string) string {
	if v := s.values[key]; len(v) > 0 {
		return singleLine(v[0])
	}
	return ""
}

// Lines implements the Submission interface.
func (s *RequestSubmission) Lines(key string) []string {
	v := s.values[key]
	lines := make([]string, len(v))
	for i := range v {
		lines[i] = singleLine(v[i])
	}
	return lines
}

// Text implements the Submission interface.
func (s *RequestSubmission) Text(key string) string {
	if v := s.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Texts implements the Submission interface.
func (s *RequestSubmission) Texts(key string) []string {
	return append([]string(nil), s.values[key]...)
}

// File implements the Submission interface.
func (s *RequestSubmission) File(key string) Upload {
	if f := s.files[key]; len(f) > 0 {
		return f[0]
	}
	return nil
}

// Files implements the Submission interface.
func (s *RequestSubmission) Files(key string) []Upload {
	f := s.files[key]
	uploads := make([]Upload, len(f))
	for i := range f {
		uploads[i] = f[i]
	}
	return uploads
}

// BypassValidation implements the Submission interface.
func (s *RequestSubmission) BypassValidation() { s.bypassed = true }

// ValidationBypassed implements the Submission interface.
func (s *RequestSubmission) ValidationBypassed() bool { return s.bypassed }

// Close removes spooled files that have not been moved.
func (s *RequestSubmission) Close() error {
	for _, files := range s.files {
		for _, u := range files {
			u.discard()
		}
	}
	return nil
}

// spooledUpload implements Upload.
type spooledUpload struct {
	name, sanitized string
	contentType     string
	size            int64
	err             UploadError

	fs    afero.Fs
	tmp   string
	moved bool
}

func (u *spooledUpload) Err() UploadError      { return u.err }
func (u *spooledUpload) Name() string          { return u.name }
func (u *spooledUpload) SanitizedName() string { return u.sanitized }
func (u *spooledUpload) ContentType() string   { return u.contentType }
func (u *spooledUpload) TemporaryFile() string { return u.tmp }
func (u *spooledUpload) Size() int64           { return u.size }

func (u *spooledUpload) Move(fsys afero.Fs, dst string) error {
	switch {
	case u.err != UploadErrOK:
		return ErrUploadNotOK
	case u.moved:
		return ErrAlreadyMoved
	}
	if err := moveFile(u.fs, u.tmp, fsys, dst); err != nil {
		return err
	}
	u.moved = true
	u.tmp = ""
	return nil
}

func (u *spooledUpload) discard() {
	if u.tmp == "" || u.moved {
		return
	}
	_ = u.fs.Remove(u.tmp)
	u.tmp = ""
}
