// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preview

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	formupload "blitznote.com/src/http.formupload"
)

// Defaults of Generic.
const (
	DefaultWidth   = 128
	DefaultHeight  = 128
	DefaultQuality = 80
)

// tileColor is the background of files that are no images.
var tileColor = color.NRGBA{R: 50, G: 190, B: 212, A: 255}

// imageExtensions are those that get decoded, given in lower case.
var imageExtensions = map[string]bool{
	"jpeg": true, "jpg": true, "jpe": true,
	"gif": true,
	"png": true,
	"bmp": true,
}

// Generic renders images as thumbnails of at most Width×Height,
// which are stretched but never enlarged. Other files get a tile
// of that size with their extension on it.
//
// The result is a JPEG of the given Quality.
type Generic struct {
	Fs      afero.Fs
	Width   int
	Height  int
	Quality int
}

var _ formupload.Previewer = (*Generic)(nil)

// NewGeneric returns a Generic with the default dimensions and quality.
func NewGeneric(fsys afero.Fs) *Generic {
	return &Generic{
		Fs:      fsys,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Quality: DefaultQuality,
	}
}

// Preview implements the formupload.Previewer interface.
func (g *Generic) Preview(r formupload.Record) (template.HTML, error) {
	var (
		img image.Image
		err error
	)
	if ext := extensionOf(r.Path); imageExtensions[ext] {
		img, err = g.thumbnail(r.Path)
	} else {
		img = g.tile(ext)
	}
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(g.Quality)); err != nil {
		return "", errors.Wrapf(err, "encoding preview of '%s'", r.Path)
	}
	el := formupload.El("img",
		"src", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()),
		"alt", r.DisplayName())
	return el.HTML(), nil
}

func (g *Generic) thumbnail(path string) (image.Image, error) {
	f, err := g.Fs.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding '%s'", path)
	}

	// shrink only
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= g.Width && h <= g.Height {
		return img, nil
	}
	if w > g.Width {
		w = g.Width
	}
	if h > g.Height {
		h = g.Height
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

func (g *Generic) tile(ext string) image.Image {
	dst := imaging.New(g.Width, g.Height, tileColor)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 8+basicfont.Face7x13.Ascent),
	}
	d.DrawString(ext)
	return dst
}

func extensionOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
