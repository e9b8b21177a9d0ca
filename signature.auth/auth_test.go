// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"net/http"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHmacSecrets(t *testing.T) {
	Convey("HmacSecrets.Insert", t, func() {
		secrets := make(HmacSecrets)

		So(secrets.Insert([]string{"yui=Z2VoZWlt"}), ShouldBeNil) // yui=geheim
		So(secrets["yui"], ShouldResemble, []byte("geheim"))

		Convey("rejects malformed tuples", func() {
			for _, tuple := range []string{"yui", "yui=3===", "=Z2VoZWlt"} {
				err := secrets.Insert([]string{tuple})
				So(err, ShouldNotBeNil)
				So(err.(AuthError).SuggestedResponseCode(), ShouldEqual, http.StatusBadRequest)
			}
			So(len(secrets), ShouldEqual, 1)
		})

		Convey("updates existing keys", func() {
			So(secrets.Insert([]string{"yui=TWFyaw==", "zween=dXBsb2Fk"}), ShouldBeNil)
			So(secrets["yui"], ShouldResemble, []byte("Mark"))
			So(secrets["zween"], ShouldResemble, []byte("upload"))
		})
	})
}

func TestSigner(t *testing.T) {
	Convey("A Signer", t, func() {
		secrets := make(HmacSecrets)
		secrets.Insert([]string{"yui=Z2VoZWlt", "old=TWFyaw=="})
		s := &Signer{KeyID: "yui", Secrets: secrets}

		Convey("issues tokens that verify", func() {
			token := s.Sign(669932181976)
			So(token, ShouldStartWith, "yui:")
			So(s.Verify(669932181976, token), ShouldBeNil)
		})

		Convey("matches what openssl computes", func() {
			// printf "1458508452" | openssl dgst -sha256 -hmac "geheim" -binary | openssl enc -base64
			token := s.Sign(1458508452)
			So(strings.Count(token, ":"), ShouldEqual, 1)
			So(len(token), ShouldEqual, len("yui:")+44)
		})

		Convey("accepts tokens signed with other known keys", func() {
			old := &Signer{KeyID: "old", Secrets: secrets}
			So(s.Verify(42, old.Sign(42)), ShouldBeNil)
		})

		Convey("rejects tokens for other ids", func() {
			err := s.Verify(43, s.Sign(42))
			So(err, ShouldNotBeNil)
			So(err.(AuthError).SuggestedResponseCode(), ShouldEqual, http.StatusForbidden)
		})

		Convey("rejects tokens of unknown keys", func() {
			stranger := &Signer{KeyID: "x", Secrets: HmacSecrets{"x": []byte("geheim")}}
			err := s.Verify(42, stranger.Sign(42))
			So(err, ShouldNotBeNil)
			So(err.(AuthError).SuggestedResponseCode(), ShouldEqual, http.StatusUnauthorized)
		})

		Convey("rejects malformed tokens", func() {
			for _, token := range []string{"", "yui", ":abc", "yui:not base64!"} {
				err := s.Verify(42, token)
				So(err, ShouldNotBeNil)
				So(err.(AuthError).SuggestedResponseCode(), ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("without secrets signs nothing", func() {
			empty := &Signer{KeyID: "yui", Secrets: make(HmacSecrets)}
			So(empty.Sign(42), ShouldEqual, "")
			So(empty.Verify(42, ""), ShouldNotBeNil)
		})
	})
}
