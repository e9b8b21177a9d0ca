// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestMultiFileField(t *testing.T) {
	Convey("A MultiFileField", t, func() {
		fsys := afero.NewMemMapFs()
		store := NewTempStore(fsys, "/staging")
		f := NewMultiFileField("photos", store)

		Convey("starts empty", func() {
			So(f.Value(), ShouldBeEmpty)
			So(f.Filled(), ShouldBeFalse)
		})

		Convey("keeps only checked files", func() {
			refs := []string{"image/png#/data/a.png", "image/png#/data/b.png", "image/png#/data/c.png"}
			s := newStubSubmission().
				set("photos[current][]", refs...).
				set("photos[use][]", refs[0], refs[2])
			So(f.LoadFromRequest(s), ShouldBeNil)

			v := f.Value()
			So(v, ShouldHaveLength, 2)
			So(v[0].Path, ShouldEqual, "/data/a.png")
			So(v[1].Path, ShouldEqual, "/data/c.png")
			So(v[0].Committed, ShouldBeTrue)
			So(f.Filled(), ShouldBeTrue)

			removed := f.Removed()
			So(removed, ShouldHaveLength, 1)
			So(removed[0].Path, ShouldEqual, "/data/b.png")
			So(removed[0].Remove, ShouldBeTrue)
			So(s.ValidationBypassed(), ShouldBeFalse)
		})

		Convey("appends new files after the current ones", func() {
			s := newStubSubmission().
				set("photos[current][]", "image/png#/data/a.png").
				set("photos[use][]", "image/png#/data/a.png").
				attach("photos[new][]",
					newStubUpload(fsys, "b.txt", "text/plain", "B"),
					newStubUpload(fsys, "c.txt", "text/plain", "C"))
			So(f.LoadFromRequest(s), ShouldBeNil)

			v := f.Value()
			So(v, ShouldHaveLength, 3)
			So(v[1].DisplayName(), ShouldEqual, "b.txt")
			So(v[2].DisplayName(), ShouldEqual, "c.txt")
			So(store.Exists(v[1].Path), ShouldBeTrue)
			So(store.Exists(v[2].Path), ShouldBeTrue)
		})

		Convey("stages every new file on its own", func() {
			s := newStubSubmission().attach("photos[new][]",
				newStubUpload(fsys, "a.txt", "text/plain", "A"),
				failedUpload("huge.iso", UploadErrIniSize),
				newStubUpload(fsys, "c.txt", "text/plain", "C"))
			So(f.LoadFromRequest(s), ShouldBeNil)

			So(f.Value(), ShouldHaveLength, 2)
			So(f.Errors(), ShouldResemble, []string{
				"huge.iso: The uploaded file exceeds the maximum file size allowed by the server",
			})
		})

		Convey("round-trips staged files", func() {
			s := newStubSubmission().attach("photos[new][]", newStubUpload(fsys, "a.txt", "text/plain", "A"))
			So(f.LoadFromRequest(s), ShouldBeNil)
			el := f.Render()

			ref := attrOf(el.Find("photos[current][]"), "value")
			So(attrOf(el.Find("photos[use][]"), "value"), ShouldEqual, ref)
			next := NewTempStore(fsys, "/staging")
			f2 := NewMultiFileField("photos", next)
			s2 := newStubSubmission().
				set("photos[current][]", ref).
				set("photos[use][]", ref).
				set("photos[transaction]", attrOf(el.Find("photos[transaction]"), "value"))
			So(f2.LoadFromRequest(s2), ShouldBeNil)
			So(f2.Value(), ShouldHaveLength, 1)
			So(f2.Value()[0].Committed, ShouldBeFalse)
		})

		Convey("bypasses validation on preload", func() {
			s := newStubSubmission().set("photos[preload]", "Preload")
			So(f.LoadFromRequest(s), ShouldBeNil)
			So(s.ValidationBypassed(), ShouldBeTrue)
		})

		Convey("rejects malformed references", func() {
			s := newStubSubmission().set("photos[current][]", "nope").set("photos[use][]", "nope")
			So(f.LoadFromRequest(s), ShouldEqual, ErrMalformedReference)
		})

		Convey("renders", func() {
			Convey("a required multi-select input while empty", func() {
				f := NewMultiFileField("photos", store, Required())
				el := f.Render()
				input := el.Find("photos[new][]")
				So(hasAttr(input, "multiple"), ShouldBeTrue)
				So(hasAttr(input, "required"), ShouldBeTrue)
				So(hasAttr(el.Find("photos[preload]"), "formnovalidate"), ShouldBeTrue)
				So(el.Find("photos[transaction]"), ShouldNotBeNil)
			})

			Convey("every file with a checked box", func() {
				f := NewMultiFileField("photos", store, Required())
				So(f.SetValue([]Record{
					{Path: "/data/a.png", ContentType: "image/png", Committed: true},
					{Path: "/data/b.png", ContentType: "image/png", Committed: true},
				}), ShouldBeNil)
				el := f.Render()

				boxes := el.FindAll("photos[use][]")
				So(boxes, ShouldHaveLength, 2)
				So(attrOf(boxes[1], "value"), ShouldEqual, "image/png#/data/b.png")
				So(hasAttr(boxes[0], "checked"), ShouldBeTrue)
				So(hasAttr(boxes[0], "formnovalidate"), ShouldBeFalse)
				So(el.FindAll("photos[current][]"), ShouldHaveLength, 2)
				So(hasAttr(el.Find("photos[new][]"), "required"), ShouldBeFalse)
			})
		})

		Convey("accepts default values", func() {
			So(f.SetValue([]Value{CommittedFile{Record{Path: "/data/a.png"}}}), ShouldBeNil)
			So(f.Value(), ShouldHaveLength, 1)
			So(f.SetValue([]Value{NoFile{}}), ShouldEqual, ErrUnexpectedValue)
			So(f.SetValue(nil), ShouldBeNil)
			So(f.Value(), ShouldBeEmpty)
		})
	})
}
