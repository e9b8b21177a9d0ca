// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
)

// HmacSecrets maps keyIDs to shared secrets.
type HmacSecrets map[string][]byte

// Insert decodes the key/value pairs
// and adds/updates them into the existing HMAC shared secret collection.
//
// The format of each pair is:
//  key=base64(value)
//
// For example:
//  hmac-key-1=yql3kIDweM8KYm+9pHzX0PKNskYAU46Jb5D6nLftTvo=
//
// The first tuple that cannot be decoded is returned as error string.
func (m HmacSecrets) Insert(tuples []string) error {
	for _, tuple := range tuples {
		p := strings.SplitN(tuple, "=", 2)
		if len(p) != 2 || p[0] == "" {
			return malformed(tuple)
		}
		binary, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			return malformed(tuple)
		}
		m[p[0]] = binary
	}

	return nil
}

// Signer signs with the secret named KeyID,
// and verifies using any secret in Secrets.
type Signer struct {
	KeyID   string
	Secrets HmacSecrets
}

func mac(secret []byte, id int64) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(strconv.FormatInt(id, 10)))
	return h.Sum(nil)
}

// Sign returns the token for 'id'.
//
// Without a secret for KeyID the result is empty, and will never verify.
func (s *Signer) Sign(id int64) string {
	secret, found := s.Secrets[s.KeyID]
	if !found {
		return ""
	}
	return s.KeyID + ":" + base64.StdEncoding.EncodeToString(mac(secret, id))
}

// Verify checks that 'token' has been issued for 'id'.
//
// Returns nil or an AuthError.
func (s *Signer) Verify(id int64, token string) error {
	if len(s.Secrets) == 0 {
		return errNoSecret
	}
	idx := strings.LastIndexByte(token, ':')
	if idx <= 0 {
		return errTokenMalformed
	}
	signature, err := base64.StdEncoding.DecodeString(token[idx+1:])
	if err != nil {
		return errTokenMalformed
	}

	secret, secretFound := s.Secrets[token[:idx]]
	// do this anyway to obscure if the keyId exists
	isSatisfied := hmac.Equal(signature, mac(secret, id))

	switch {
	case !secretFound:
		return errTokenUnknownKey
	case !isSatisfied:
		return errTokenMismatch
	}
	return nil
}
