// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preview

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	formupload "blitznote.com/src/http.formupload"
)

func writeImage(fsys afero.Fs, path string, w, h int, format imaging.Format) {
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 200, A: 255})
	if err := imaging.Encode(&buf, img, format); err != nil {
		panic(err)
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0640); err != nil {
		panic(err)
	}
}

// decodeDataURI returns the image of the first "src" attribute.
func decodeDataURI(h template.HTML) image.Image {
	const marker = `src="data:image/jpeg;base64,`
	s := string(h)
	idx := strings.Index(s, marker)
	So(idx, ShouldBeGreaterThanOrEqualTo, 0)
	s = s[idx+len(marker):]
	s = s[:strings.IndexByte(s, '"')]

	b, err := base64.StdEncoding.DecodeString(s)
	So(err, ShouldBeNil)
	img, err := imaging.Decode(bytes.NewReader(b))
	So(err, ShouldBeNil)
	return img
}

func TestGeneric(t *testing.T) {
	Convey("Generic previews", t, func() {
		fsys := afero.NewMemMapFs()
		g := NewGeneric(fsys)

		Convey("shrink large images", func() {
			writeImage(fsys, "/t/cat.png", 300, 200, imaging.PNG)
			h, err := g.Preview(formupload.Record{Path: "/t/cat.png", Name: "Cat.png"})
			So(err, ShouldBeNil)
			So(string(h), ShouldStartWith, "<img ")
			So(string(h), ShouldContainSubstring, `alt="Cat.png"`)

			b := decodeDataURI(h).Bounds()
			So(b.Dx(), ShouldEqual, 128)
			So(b.Dy(), ShouldEqual, 128)
		})

		Convey("never enlarge small ones", func() {
			writeImage(fsys, "/t/icon.GIF", 64, 32, imaging.GIF)
			h, err := g.Preview(formupload.Record{Path: "/t/icon.GIF"})
			So(err, ShouldBeNil)
			So(string(h), ShouldContainSubstring, `alt="icon.GIF"`)

			b := decodeDataURI(h).Bounds()
			So(b.Dx(), ShouldEqual, 64)
			So(b.Dy(), ShouldEqual, 32)
		})

		Convey("render a tile for other files", func() {
			So(afero.WriteFile(fsys, "/t/notes.txt", []byte("hello"), 0640), ShouldBeNil)
			h, err := g.Preview(formupload.Record{Path: "/t/notes.txt"})
			So(err, ShouldBeNil)

			img := decodeDataURI(h)
			So(img.Bounds().Dx(), ShouldEqual, 128)
			r, gr, b, _ := img.At(100, 100).RGBA()
			So(int(r>>8), ShouldAlmostEqual, 50, 8)
			So(int(gr>>8), ShouldAlmostEqual, 190, 8)
			So(int(b>>8), ShouldAlmostEqual, 212, 8)
		})

		Convey("without reading the file if it is no image", func() {
			_, err := g.Preview(formupload.Record{Path: "/t/missing.pdf"})
			So(err, ShouldBeNil)
		})

		Convey("fail on missing images", func() {
			_, err := g.Preview(formupload.Record{Path: "/t/missing.jpg"})
			So(err, ShouldNotBeNil)
		})

		Convey("fail on corrupt images", func() {
			So(afero.WriteFile(fsys, "/t/fake.png", []byte("not a png"), 0640), ShouldBeNil)
			_, err := g.Preview(formupload.Record{Path: "/t/fake.png"})
			So(err, ShouldNotBeNil)
		})
	})
}

type fixedPreviewer template.HTML

func (p fixedPreviewer) Preview(formupload.Record) (template.HTML, error) {
	return template.HTML(p), nil
}

func TestSanitized(t *testing.T) {
	Convey("Sanitized", t, func() {
		Convey("strips scripts and event handlers", func() {
			p := Sanitized(fixedPreviewer(`<img src="data:image/png;base64,iVBORw0KGgo=" onerror="alert(1)" alt="x"><script>alert(2)</script>`))
			h, err := p.Preview(formupload.Record{})
			So(err, ShouldBeNil)
			So(string(h), ShouldNotContainSubstring, "script")
			So(string(h), ShouldNotContainSubstring, "onerror")
			So(string(h), ShouldContainSubstring, "data:image/png;base64,")
		})

		Convey("keeps what Generic renders", func() {
			fsys := afero.NewMemMapFs()
			writeImage(fsys, "/cat.jpg", 16, 16, imaging.JPEG)
			p := Sanitized(NewGeneric(fsys))
			h, err := p.Preview(formupload.Record{Path: "/cat.jpg"})
			So(err, ShouldBeNil)
			So(decodeDataURI(h).Bounds().Dx(), ShouldEqual, 16)
		})
	})
}
