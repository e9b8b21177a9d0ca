// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !openbsd
// +build !openbsd

package formupload

// Without unveil(2) Lockdown has nothing to do.

func unveil(string, string) error { return nil }

func unveilBlock() error { return nil }
