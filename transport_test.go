// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"
)

func TestUploadError(t *testing.T) {
	Convey("UploadError", t, func() {
		Convey("has a message for every code but OK", func() {
			for code := UploadErrIniSize; code <= UploadErrExtension; code++ {
				So(code.Message(), ShouldNotBeBlank)
				So(code.Message(), ShouldNotEqual, msgUnknownUploadError)
				So(code.Error(), ShouldEqual, code.Message())
			}
			So(UploadError(99).Message(), ShouldEqual, msgUnknownUploadError)
		})

		Convey("panics when asked for the message of OK", func() {
			So(func() { UploadErrOK.Message() }, ShouldPanic)
			So(UploadErrOK.Error(), ShouldEqual, "OK")
		})

		Convey("is rendered with the name of the file", func() {
			So(FormatUploadError(failedUpload("cat.jpg", UploadErrPartial)), ShouldEqual,
				"cat.jpg: The uploaded file was only partially uploaded")
		})

		Convey("can be translated", func() {
			cs := NewTranslator(language.Czech)
			So(formatUploadError("cat.jpg", UploadErrNoTmpDir, cs), ShouldEqual, "cat.jpg: Chybí dočasná složka")
			So(formatUploadError("cat.jpg", UploadError(99), cs), ShouldEqual, "cat.jpg: Neznámá chyba při nahrávání")

			So(cs.Translate("100% done"), ShouldEqual, "100% done")
			So(cs.Translate(labelRemove), ShouldEqual, "Odstranit")

			en := NewTranslator(language.English)
			So(en.Translate("50%s %d off"), ShouldEqual, "50%s %d off")
			So(formatUploadError("cat.jpg", UploadErrNoTmpDir, en), ShouldEqual, "cat.jpg: Missing a temporary folder")
		})
	})
}
