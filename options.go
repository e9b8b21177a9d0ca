// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"html/template"

	"go.uber.org/zap"
)

// Previewer renders a file in place of its name.
type Previewer interface {
	Preview(r Record) (template.HTML, error)
}

// TransactionSigner protects transaction ids from being guessed, or exchanged.
type TransactionSigner interface {
	Sign(id int64) string
	Verify(id int64, token string) error
}

// FieldOption configures a field.
type FieldOption func(*fieldOptions)

type fieldOptions struct {
	previewer  Previewer
	translator Translator
	logger     *zap.Logger
	signer     TransactionSigner
	required   bool
	maxSize    int64
	accept     []string
}

func newFieldOptions(opts []FieldOption) fieldOptions {
	o := fieldOptions{
		translator: nopTranslator{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPreviewer has files rendered by 'p'.
// Without one, their names are displayed.
func WithPreviewer(p Previewer) FieldOption {
	return func(o *fieldOptions) { o.previewer = p }
}

// WithTranslator localizes labels and errors.
func WithTranslator(t Translator) FieldOption {
	return func(o *fieldOptions) {
		if t != nil {
			o.translator = t
		}
	}
}

// WithLogger receives failures to stage files and suspicious transaction ids.
func WithLogger(l *zap.Logger) FieldOption {
	return func(o *fieldOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSigner adds a signature to the transaction id, which must be posted back.
func WithSigner(s TransactionSigner) FieldOption {
	return func(o *fieldOptions) { o.signer = s }
}

// Required has the browser insist on a file.
func Required() FieldOption {
	return func(o *fieldOptions) { o.required = true }
}

// WithMaxSize rejects larger files (in bytes) with UploadErrFormSize.
func WithMaxSize(n int64) FieldOption {
	return func(o *fieldOptions) { o.maxSize = n }
}

// WithAccept limits files to the given content types, which can be wildcards like "image/*".
// Others are rejected with UploadErrExtension.
func WithAccept(contentTypes ...string) FieldOption {
	return func(o *fieldOptions) { o.accept = contentTypes }
}
