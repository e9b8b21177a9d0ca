// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"mime"
	"strings"

	"go.uber.org/zap"
)

// fieldBase is what single- and multi-file fields share.
type fieldBase struct {
	name   string
	store  Store
	opts   fieldOptions
	errors []string
}

func newFieldBase(name string, store Store, opts []FieldOption) fieldBase {
	return fieldBase{
		name:  name,
		store: store,
		opts:  newFieldOptions(opts),
	}
}

// Name is the prefix of all keys the field posts.
func (b *fieldBase) Name() string { return b.name }

// Store is where the field stages files.
func (b *fieldBase) Store() Store { return b.store }

// Errors that are to be displayed to the user,
// resulting from the last call to LoadFromRequest.
func (b *fieldBase) Errors() []string {
	return append([]string(nil), b.errors...)
}

// DestroyStore removes the transaction, which you do after having committed the files.
func (b *fieldBase) DestroyStore() error {
	return b.store.Destroy()
}

func (b *fieldBase) addError(msg string) {
	b.errors = append(b.errors, msg)
}

// adoptTransaction continues the posted transaction, if any.
// If none has been posted a new one will be started once it's needed.
func (b *fieldBase) adoptTransaction(s Submission) error {
	raw := s.Line(subKey(b.name, "transaction"))
	if raw == "" {
		return nil
	}
	id, err := ParseTransactionID(raw)
	if err != nil {
		b.opts.logger.Warn("invalid transaction id", zap.String("field", b.name), zap.String("transaction", raw))
		return err
	}
	if b.opts.signer != nil {
		if err := b.opts.signer.Verify(int64(id), s.Line(subKey(b.name, "signature"))); err != nil {
			b.opts.logger.Warn("transaction id with invalid signature",
				zap.String("field", b.name), zap.Stringer("transaction", id), zap.Error(err))
			return ErrTransactionForged
		}
	}
	return b.store.SetID(id)
}

// check applies the limits of the field to an upload the transport has accepted.
func (b *fieldBase) check(u Upload) UploadError {
	if b.opts.maxSize > 0 && u.Size() > b.opts.maxSize {
		return UploadErrFormSize
	}
	if len(b.opts.accept) > 0 {
		mediaType, _, err := mime.ParseMediaType(u.ContentType())
		if err != nil || !matchesContentType(mediaType, b.opts.accept) {
			return UploadErrExtension
		}
	}
	return UploadErrOK
}

// stage moves an upload into the transaction.
// Any failure is recorded as error of the field, and results in false.
func (b *fieldBase) stage(u Upload) (Record, bool) {
	code := u.Err()
	if code == UploadErrOK {
		code = b.check(u)
	}
	if code != UploadErrOK {
		b.addError(formatUploadError(u.Name(), code, b.opts.translator))
		return Record{}, false
	}

	r, err := b.store.Append(u)
	if err != nil {
		b.opts.logger.Error("cannot stage upload",
			zap.String("field", b.name), zap.String("name", u.Name()), zap.Error(err))
		b.addError(formatUploadError(u.Name(), UploadErrCantWrite, b.opts.translator))
		return Record{}, false
	}
	return r, true
}

// resolve decodes a posted reference. If the file is in the transaction
// it has not been committed yet, else it must be in persistent storage.
func (b *fieldBase) resolve(raw string) (Record, error) {
	r, err := ParseReference(raw)
	if err != nil {
		return Record{}, err
	}
	r.Committed = !b.store.Exists(r.Path)
	return r, nil
}

func (b *fieldBase) translate(msg string) string {
	return b.opts.translator.Translate(msg)
}

// previewPart renders a file using the previewer, or by its name.
func (b *fieldBase) previewPart(r Record) *Element {
	if b.opts.previewer != nil {
		h, err := b.opts.previewer.Preview(r)
		if err == nil {
			return El("span", "class", "file-preview").AddHTML(h)
		}
		b.opts.logger.Warn("cannot render preview", zap.String("path", r.Path), zap.Error(err))
	}
	return El("input", "type", "text", "value", r.DisplayName()).SetBool("readonly", true)
}

// newPart is the input element to select files with.
func (b *fieldBase) newPart(key string, required bool) *Element {
	el := El("input", "type", "file", "name", key)
	if len(b.opts.accept) > 0 {
		el.Set("accept", strings.Join(b.opts.accept, ","))
	}
	return el.SetBool("required", required)
}

func (b *fieldBase) transactionParts() []*Element {
	id := b.store.ID()
	parts := []*Element{
		El("input", "type", "hidden", "name", subKey(b.name, "transaction"), "value", id.String()),
	}
	if b.opts.signer != nil {
		parts = append(parts,
			El("input", "type", "hidden", "name", subKey(b.name, "signature"), "value", b.opts.signer.Sign(int64(id))))
	}
	return parts
}

// FileField holds at most one file.
type FileField struct {
	fieldBase

	value   Value
	state   State
	removed *Record
}

// NewFileField creates a field whose keys start with 'name'.
func NewFileField(name string, store Store, opts ...FieldOption) *FileField {
	return &FileField{
		fieldBase: newFieldBase(name, store, opts),
		value:     NoFile{},
	}
}

// LoadFromRequest sets the value from what has been posted.
//
// A new file takes precedence over the current one, and "remove" over both.
// Problems with the file itself end up in Errors. Returned are errors
// that indicate tampering, such as a malformed transaction id or reference.
func (f *FileField) LoadFromRequest(s Submission) error {
	f.errors, f.removed = nil, nil
	f.value, f.state = NoFile{}, StateEmpty

	if err := f.adoptTransaction(s); err != nil {
		return err
	}

	if u := s.File(subKey(f.name, "new")); u != nil {
		if r, ok := f.stage(u); ok {
			f.value = StagedFile{r}
		}
	} else if raw := s.Text(subKey(f.name, "current")); raw != "" {
		r, err := f.resolve(raw)
		if err != nil {
			return err
		}
		f.value = ValueOf(r)
	}
	f.state = stateOf(f.value)

	if s.Line(subKey(f.name, "remove")) != "" {
		if r, ok := RecordOf(f.value); ok {
			r.Remove = true
			f.removed = &r
		}
		f.value = NoFile{}
		f.state = StateMarkedForRemoval
		s.BypassValidation()
	}
	return nil
}

// Value is what the field has settled on.
func (f *FileField) Value() Value { return f.value }

// State is Value, but tells removals apart from fields that have been left empty.
func (f *FileField) State() State { return f.state }

// Removed returns the file the user has asked to remove, flagged as such.
//
// If it has been committed, delete it when saving the form.
func (f *FileField) Removed() (Record, bool) {
	if f.removed == nil {
		return Record{}, false
	}
	return *f.removed, true
}

// Filled is true if the field holds a file.
func (f *FileField) Filled() bool {
	r, ok := RecordOf(f.value)
	return ok && r.Filled()
}

// SetValue sets a default value, see Assign for what is accepted.
func (f *FileField) SetValue(v interface{}) error {
	val, err := Assign(v)
	if err != nil {
		return err
	}
	f.value = val
	f.state = stateOf(val)
	return nil
}

// Render returns the markup for the next round trip.
//
// With a file the current value is carried in a hidden input, and the
// input for a new file is no longer required. The remove button is
// exempt from validation in the browser.
func (f *FileField) Render() *Element {
	c := El("div", "class", "file-control", "data-type", "file")

	if r, ok := RecordOf(f.value); ok {
		c.Add(
			El("input", "type", "hidden", "name", subKey(f.name, "current"), "value", r.Serialize()),
			f.previewPart(r),
			El("input", "type", "submit",
				"name", subKey(f.name, "remove"),
				"value", f.translate(labelRemoveShort),
				"title", f.translate(labelRemove)).SetBool("formnovalidate", true),
			f.newPart(subKey(f.name, "new"), false),
		)
	} else {
		c.Add(f.newPart(subKey(f.name, "new"), f.opts.required))
	}

	c.Add(f.transactionParts()...)
	return c
}
