// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

// MultiFileField holds any number of files.
//
// Every file comes with a checkbox; unchecking it drops the file on the next round trip.
type MultiFileField struct {
	fieldBase

	value   []Record
	removed []Record
}

// NewMultiFileField creates a field whose keys start with 'name'.
func NewMultiFileField(name string, store Store, opts ...FieldOption) *MultiFileField {
	return &MultiFileField{
		fieldBase: newFieldBase(name, store, opts),
	}
}

// LoadFromRequest sets the value from what has been posted.
//
// Current files are kept only if their checkbox has been posted as well.
// Every new file is staged on its own; those that fail are reported
// in Errors, and don't affect the others.
func (f *MultiFileField) LoadFromRequest(s Submission) error {
	f.errors, f.removed, f.value = nil, nil, nil

	if err := f.adoptTransaction(s); err != nil {
		return err
	}

	used := make(map[string]bool)
	for _, v := range s.Lines(subKeyList(f.name, "use")) {
		used[v] = true
	}

	var values []Record
	for _, raw := range s.Texts(subKeyList(f.name, "current")) {
		r, err := f.resolve(raw)
		if err != nil {
			return err
		}
		if !used[raw] {
			r.Remove = true
			f.removed = append(f.removed, r)
			continue
		}
		values = append(values, r)
	}

	for _, u := range s.Files(subKeyList(f.name, "new")) {
		if r, ok := f.stage(u); ok {
			values = append(values, r)
		}
	}
	f.value = values

	if s.Line(subKey(f.name, "preload")) != "" {
		s.BypassValidation()
	}
	return nil
}

// Value returns the files, in order.
func (f *MultiFileField) Value() []Record {
	return append([]Record(nil), f.value...)
}

// Removed returns the files the user has unchecked, flagged as such.
func (f *MultiFileField) Removed() []Record {
	return append([]Record(nil), f.removed...)
}

// Filled is true if there is at least one file.
func (f *MultiFileField) Filled() bool {
	for _, r := range f.value {
		if r.Filled() {
			return true
		}
	}
	return false
}

// SetValue sets a default value, see AssignList for what is accepted.
func (f *MultiFileField) SetValue(v interface{}) error {
	list, err := AssignList(v)
	if err != nil {
		return err
	}
	f.value = list
	return nil
}

// Render returns the markup for the next round trip.
//
// Once there are files, the input for new ones is no longer required.
func (f *MultiFileField) Render() *Element {
	c := El("div", "class", "file-control multifile-control", "data-type", "file")

	for _, r := range f.value {
		ref := r.Serialize()
		c.Add(El("div", "class", "file-item").Add(
			El("input", "type", "checkbox",
				"name", subKeyList(f.name, "use"),
				"value", ref,
				"title", f.translate(labelKeep)).SetBool("checked", true),
			El("input", "type", "hidden", "name", subKeyList(f.name, "current"), "value", ref),
			f.previewPart(r),
		))
	}

	c.Add(
		El("div", "class", "file-item").Add(
			f.newPart(subKeyList(f.name, "new"), f.opts.required && len(f.value) == 0).SetBool("multiple", true),
		),
		El("input", "type", "submit",
			"name", subKey(f.name, "preload"),
			"value", f.translate(labelPreload)).SetBool("formnovalidate", true),
	)
	c.Add(f.transactionParts()...)
	return c
}
