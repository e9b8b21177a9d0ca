// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTempStore(t *testing.T) {
	Convey("A TempStore", t, func() {
		fsys := afero.NewMemMapFs()
		s := NewTempStore(fsys, "/staging")

		Convey("starts a transaction on demand", func() {
			id := s.ID()
			So(id, ShouldBeGreaterThan, 0)
			So(s.ID(), ShouldEqual, id)
			So(s.Dir(), ShouldEqual, "/staging/upload-"+id.String())
		})

		Convey("adopts transactions", func() {
			So(s.SetID(42), ShouldBeNil)
			So(s.ID(), ShouldEqual, TransactionID(42))
			So(s.SetID(0), ShouldEqual, ErrInvalidTransactionID)
			So(s.SetID(-1), ShouldEqual, ErrInvalidTransactionID)
		})

		Convey("moves uploads into the transaction", func() {
			u := newStubUpload(fsys, "what?.txt", "text/plain", "DELME")
			spooled := u.TemporaryFile()

			r, err := s.Append(u)
			So(err, ShouldBeNil)
			So(r.Path, ShouldEqual, filepath.Join(s.Dir(), "what_.txt"))
			So(r.Name, ShouldEqual, "what?.txt")
			So(r.ContentType, ShouldEqual, "text/plain")
			So(r.Committed, ShouldBeFalse)
			So(s.Exists(r.Path), ShouldBeTrue)

			content, err := afero.ReadFile(fsys, r.Path)
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual, "DELME")
			exists, _ := afero.Exists(fsys, spooled)
			So(exists, ShouldBeFalse)

			Convey("replacing files of the same name", func() {
				r2, err := s.Append(newStubUpload(fsys, "what?.txt", "text/plain", "REMOVEME"))
				So(err, ShouldBeNil)
				So(r2.Path, ShouldEqual, r.Path)
				content, _ := afero.ReadFile(fsys, r.Path)
				So(string(content), ShouldEqual, "REMOVEME")
			})
		})

		Convey("does not append failed uploads", func() {
			_, err := s.Append(failedUpload("a.txt", UploadErrPartial))
			So(err, ShouldEqual, ErrUploadNotOK)
		})

		Convey("reports files of its own transaction only", func() {
			other := NewTempStore(fsys, "/staging")
			theirs, err := other.Append(newStubUpload(fsys, "a.txt", "text/plain", "A"))
			So(err, ShouldBeNil)

			So(s.Exists(theirs.Path), ShouldBeFalse) // no transaction yet
			ours, err := s.Append(newStubUpload(fsys, "b.txt", "text/plain", "B"))
			So(err, ShouldBeNil)

			So(s.Exists(ours.Path), ShouldBeTrue)
			So(s.Exists(theirs.Path), ShouldBeFalse)
			So(s.Exists(s.Dir()+"/../upload-"+other.ID().String()+"/a.txt"), ShouldBeFalse)
			So(s.Exists(s.Dir()), ShouldBeFalse)
			So(s.Exists(s.Dir()+"/missing.txt"), ShouldBeFalse)
			So(s.Exists(""), ShouldBeFalse)
		})

		Convey("destroys transactions", func() {
			r, err := s.Append(newStubUpload(fsys, "a.txt", "text/plain", "A"))
			So(err, ShouldBeNil)

			So(s.Destroy(), ShouldBeNil)
			exists, _ := afero.Exists(fsys, r.Path)
			So(exists, ShouldBeFalse)
			exists, _ = afero.DirExists(fsys, s.Dir())
			So(exists, ShouldBeFalse)

			Convey("more than once", func() {
				So(s.Destroy(), ShouldBeNil)
			})
		})

		Convey("has nothing to destroy without transaction", func() {
			So(s.Destroy(), ShouldBeNil)
		})

		Convey("reports failures to destroy as *os.PathError", func() {
			So(s.SetID(42), ShouldBeNil)
			So(fsys.MkdirAll(s.Dir(), permBitsDir), ShouldBeNil)
			s.Fs = afero.NewReadOnlyFs(fsys)
			err := s.Destroy()
			So(err, ShouldNotBeNil)
			_, ok := errors.Cause(err).(*os.PathError)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestCollectGarbage(t *testing.T) {
	Convey("Garbage collection", t, func() {
		fsys := afero.NewMemMapFs()
		now := time.Now()
		s := NewTempStore(fsys, "/staging")
		s.GCAgeLimit = time.Hour
		s.GCMaxCount = 2

		mk := func(age time.Duration) TransactionID {
			id := idAt(now.Add(-age))
			So(afero.WriteFile(fsys, filepath.Join(s.dirOf(id), "f.txt"), []byte("x"), permBitsFile), ShouldBeNil)
			return id
		}
		exists := func(id TransactionID) bool {
			found, _ := afero.DirExists(fsys, s.dirOf(id))
			return found
		}
		oldest, older, old, young := mk(5*time.Hour), mk(4*time.Hour), mk(3*time.Hour), mk(10*time.Minute)

		Convey("removes at most GCMaxCount, the oldest first", func() {
			n, err := s.CollectGarbage(now)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			So(exists(oldest), ShouldBeFalse)
			So(exists(older), ShouldBeFalse)
			So(exists(old), ShouldBeTrue)
			So(exists(young), ShouldBeTrue)

			n, _ = s.CollectGarbage(now)
			So(n, ShouldEqual, 1)
			So(exists(old), ShouldBeFalse)

			n, _ = s.CollectGarbage(now)
			So(n, ShouldEqual, 0)
			So(exists(young), ShouldBeTrue)
		})

		Convey("never removes the current transaction", func() {
			So(s.SetID(oldest), ShouldBeNil)
			s.GCMaxCount = 10
			n, err := s.CollectGarbage(now)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			So(exists(oldest), ShouldBeTrue)
		})

		Convey("is disabled with GCMaxCount zero", func() {
			s.GCMaxCount = 0
			n, err := s.CollectGarbage(now)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
			So(exists(oldest), ShouldBeTrue)
		})

		Convey("leaves alone what it has not created", func() {
			So(afero.WriteFile(fsys, "/staging/upload-123", []byte("x"), permBitsFile), ShouldBeNil)
			So(fsys.MkdirAll("/staging/upload-abc", permBitsDir), ShouldBeNil)
			So(fsys.MkdirAll("/staging/other-123", permBitsDir), ShouldBeNil)
			s.GCMaxCount = 10

			n, err := s.CollectGarbage(now)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
			for _, p := range []string{"/staging/upload-123", "/staging/upload-abc", "/staging/other-123"} {
				found, _ := afero.Exists(fsys, p)
				So(found, ShouldBeTrue)
			}
		})

		Convey("skips names that only look like transactions", func() {
			for _, name := range []string{"upload-+1", "upload-01", "upload-0042"} {
				So(fsys.MkdirAll(filepath.Join("/staging", name), permBitsDir), ShouldBeNil)
			}
			s.GCMaxCount = 1

			n, err := s.CollectGarbage(now)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			So(exists(oldest), ShouldBeFalse)

			n, err = s.CollectGarbage(now)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			So(exists(older), ShouldBeFalse)

			found, _ := afero.DirExists(fsys, "/staging/upload-+1")
			So(found, ShouldBeTrue)
		})

		Convey("does not mind a missing base directory", func() {
			s.BaseDir = "/nonexistent"
			n, err := s.CollectGarbage(now)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})

		Convey("continues on errors, returning the first", func() {
			s.Fs = afero.NewReadOnlyFs(fsys)
			n, err := s.CollectGarbage(now)
			So(err, ShouldNotBeNil)
			So(n, ShouldEqual, 0)
		})
	})
}

func TestConfiguration_Release(t *testing.T) {
	Convey("Release logs failed garbage collection", t, func() {
		core, logs := observer.New(zapcore.DebugLevel)
		fsys := afero.NewMemMapFs()
		stale := idAt(time.Now().Add(-24 * time.Hour))
		So(fsys.MkdirAll("/staging/upload-"+stale.String(), permBitsDir), ShouldBeNil)

		cfg := NewDefaultConfiguration("/staging")
		cfg.Fs = afero.NewReadOnlyFs(fsys)
		cfg.Logger = zap.New(core)

		cfg.Release(cfg.NewStore())
		So(logs.FilterMessage("garbage collection failed").Len(), ShouldEqual, 1)

		Convey("and what has been removed", func() {
			cfg.Fs = fsys
			cfg.Release(cfg.NewStore())
			So(logs.FilterMessage("removed stale transaction").Len(), ShouldEqual, 1)
			found, _ := afero.DirExists(fsys, "/staging/upload-"+stale.String())
			So(found, ShouldBeFalse)
		})
	})
}
