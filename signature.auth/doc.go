// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package auth signs transaction ids, so clients cannot continue
// transactions they have not been handed.
//
// A token looks like this:
//
//  (key_id):base64(hmac-sha256(secret, decimal id))
//
// This is how you generate one on the Linux shell:
//  secret="geheim"
//  id="669932181976"
//
//  printf "${id}" \
//  | openssl dgst -sha256 -hmac "${secret}" -binary \
//  | openssl enc -base64
//
// The key id allows for secrets to be rotated: keep the old one in
// HmacSecrets until its transactions have been garbage-collected.
package auth // import "blitznote.com/src/http.formupload/signature.auth"
