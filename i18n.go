// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Translator localizes the messages and labels of fields.
type Translator interface {
	Translate(msg string) string
}

type nopTranslator struct{}

func (nopTranslator) Translate(msg string) string { return msg }

// Labels used by fields, which a Translator might want to know about.
const (
	labelRemove      = "Remove"
	labelRemoveShort = "x"
	labelPreload     = "Preload"
	labelKeep        = "Keep"
)

// catalogTranslator looks up messages in the catalog of golang.org/x/text/message.
type catalogTranslator struct {
	p *message.Printer
}

// NewTranslator returns a Translator for the given language.
//
// Messages without translation are returned unaltered.
// Czech is included, more can be added using message.SetString
// with any '%' in key and translation doubled.
func NewTranslator(tag language.Tag) Translator {
	return catalogTranslator{p: message.NewPrinter(tag)}
}

// Translate returns 'msg' literally if there is no translation for it.
func (t catalogTranslator) Translate(msg string) string {
	return t.p.Sprintf(literal(msg))
}

// literal escapes verbs, because catalog keys double as format strings.
func literal(msg string) string {
	return strings.ReplaceAll(msg, "%", "%%")
}

func init() {
	cs := map[string]string{
		labelRemove:           "Odstranit",
		labelPreload:          "Nahrát",
		labelKeep:             "Ponechat",
		msgUnknownUploadError: "Neznámá chyba při nahrávání",

		uploadErrorMessages[UploadErrIniSize]:   "Nahraný soubor překračuje maximální velikost povolenou serverem",
		uploadErrorMessages[UploadErrFormSize]:  "Nahraný soubor překračuje maximální velikost určenou formulářem",
		uploadErrorMessages[UploadErrPartial]:   "Soubor byl nahrán jen částečně",
		uploadErrorMessages[UploadErrNoFile]:    "Nebyl nahrán žádný soubor",
		uploadErrorMessages[UploadErrNoTmpDir]:  "Chybí dočasná složka",
		uploadErrorMessages[UploadErrCantWrite]: "Soubor se nepodařilo zapsat na disk",
		uploadErrorMessages[UploadErrExtension]: "Nahrávání souboru bylo zastaveno",
	}
	for key, msg := range cs {
		_ = message.SetString(language.Czech, literal(key), literal(msg))
	}
}
