// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"html/template"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	formupload "blitznote.com/src/http.formupload"
	"blitznote.com/src/http.formupload/ginform"
	"blitznote.com/src/http.formupload/preview"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>formupload</title></head>
<body>
<form method="post" action="/" enctype="multipart/form-data">
{{range .Errors}}<p class="error">{{.}}</p>
{{end}}<fieldset><legend>Avatar</legend>{{.Avatar}}</fieldset>
<fieldset><legend>Attachments</legend>{{.Attachments}}</fieldset>
<input type="submit" name="save" value="Save">
</form>
</body>
</html>
`))

type pageData struct {
	Avatar      template.HTML
	Attachments template.HTML
	Errors      []string
}

// document is what has been saved.
type document struct {
	Avatar      formupload.Value
	Attachments []formupload.Record
}

// records are all files of the document.
func (d document) records() []formupload.Record {
	var list []formupload.Record
	if r, ok := formupload.RecordOf(d.Avatar); ok {
		list = append(list, r)
	}
	return append(list, d.Attachments...)
}

// formPage edits one document, which is kept in memory.
type formPage struct {
	a          *app
	previewer  formupload.Previewer
	translator formupload.Translator

	mu  sync.Mutex
	doc document
}

func newFormPage(a *app) *formPage {
	return &formPage{
		a:          a,
		previewer:  preview.Sanitized(preview.NewGeneric(a.fs)),
		translator: a.cfg.Translator(),
		doc:        document{Avatar: formupload.NoFile{}},
	}
}

func (p *formPage) fields(c *gin.Context) (*formupload.FileField, *formupload.MultiFileField) {
	store := ginform.Store(c)
	common := []formupload.FieldOption{
		formupload.WithPreviewer(p.previewer),
		formupload.WithTranslator(p.translator),
	}

	avatar := formupload.NewFileField("avatar", store, ginform.FieldOptions(c,
		append(common, formupload.WithAccept("image/*"), formupload.WithMaxSize(4<<20))...)...)
	attachments := formupload.NewMultiFileField("attachments", store, ginform.FieldOptions(c, common...)...)
	return avatar, attachments
}

func (p *formPage) render(c *gin.Context, code int, avatar *formupload.FileField, attachments *formupload.MultiFileField) {
	data := pageData{
		Avatar:      avatar.Render().HTML(),
		Attachments: attachments.Render().HTML(),
		Errors:      append(avatar.Errors(), attachments.Errors()...),
	}
	c.Status(code)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(c.Writer, data); err != nil {
		p.a.logger.Error("cannot render page", zap.Error(err))
	}
}

func (p *formPage) show(c *gin.Context) {
	avatar, attachments := p.fields(c)

	p.mu.Lock()
	_ = avatar.SetValue(p.doc.Avatar)
	_ = attachments.SetValue(p.doc.Attachments)
	p.mu.Unlock()

	p.render(c, http.StatusOK, avatar, attachments)
}

func (p *formPage) submit(c *gin.Context) {
	s, err := ginform.Submission(c)
	if err != nil {
		c.String(http.StatusBadRequest, "%s", "Malformed form")
		return
	}
	avatar, attachments := p.fields(c)
	for _, load := range []func(formupload.Submission) error{avatar.LoadFromRequest, attachments.LoadFromRequest} {
		if err := load(s); err != nil {
			p.a.logger.Warn("rejected form", zap.String("ip", c.ClientIP()), zap.Error(err))
			c.String(http.StatusBadRequest, "%s", "Malformed form")
			return
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.knowsCommitted(avatar, attachments) {
		p.a.logger.Warn("form references foreign files", zap.String("ip", c.ClientIP()))
		c.String(http.StatusBadRequest, "%s", "Malformed form")
		return
	}

	switch {
	case len(avatar.Errors())+len(attachments.Errors()) > 0:
		p.render(c, http.StatusUnprocessableEntity, avatar, attachments)
		return
	case s.ValidationBypassed() || s.Line("save") == "":
		p.render(c, http.StatusOK, avatar, attachments)
		return
	}

	if err := p.save(avatar, attachments); err != nil {
		p.a.logger.Error("cannot save", zap.Error(err))
		c.String(http.StatusInternalServerError, "%s", "Cannot save")
		return
	}
	if err := avatar.DestroyStore(); err != nil {
		p.a.logger.Warn("cannot destroy transaction", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// knowsCommitted is false if a posted reference to a committed file
// is not part of the document. Only the store vouches for staged ones.
func (p *formPage) knowsCommitted(avatar *formupload.FileField, attachments *formupload.MultiFileField) bool {
	known := make(map[string]bool)
	for _, r := range p.doc.records() {
		known[r.Path] = true
	}

	posted := attachments.Value()
	posted = append(posted, attachments.Removed()...)
	if r, ok := formupload.RecordOf(avatar.Value()); ok {
		posted = append(posted, r)
	}
	if r, ok := avatar.Removed(); ok {
		posted = append(posted, r)
	}
	for _, r := range posted {
		if r.Committed && !known[r.Path] {
			return false
		}
	}
	return true
}

// save commits staged files, and deletes those that are no longer referenced.
func (p *formPage) save(avatar *formupload.FileField, attachments *formupload.MultiFileField) error {
	next := document{Avatar: formupload.NoFile{}}

	if r, ok := formupload.RecordOf(avatar.Value()); ok {
		committed, err := p.commit(r)
		if err != nil {
			return err
		}
		next.Avatar = formupload.ValueOf(committed)
	}
	for _, r := range attachments.Value() {
		committed, err := p.commit(r)
		if err != nil {
			return err
		}
		next.Attachments = append(next.Attachments, committed)
	}

	kept := make(map[string]bool)
	for _, r := range next.records() {
		kept[r.Path] = true
	}
	for _, r := range p.doc.records() {
		if kept[r.Path] {
			continue
		}
		r.Remove = true
		if err := formupload.Discard(p.a.fs, r); err != nil {
			p.a.logger.Warn("cannot delete file", zap.String("path", r.Path), zap.Error(err))
		}
	}

	p.doc = next
	return nil
}

func (p *formPage) commit(r formupload.Record) (formupload.Record, error) {
	dir := filepath.Join(p.a.cfg.CommittedDir(), uuid.NewString())
	committed, err := formupload.Commit(p.a.fs, r, dir, "")
	if err != nil {
		return formupload.Record{}, err
	}
	if !r.Committed {
		p.a.logger.Info("committed", zap.String("from", r.Path), zap.String("to", committed.Path))
	}
	return committed, nil
}
