// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preview

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	formupload "blitznote.com/src/http.formupload"
)

type sanitized struct {
	next   formupload.Previewer
	policy *bluemonday.Policy
}

// Sanitized passes the markup of 'p' through a policy for user generated content,
// which admits images with data URIs.
//
// Use this with previewers that embed anything the user has supplied.
func Sanitized(p formupload.Previewer) formupload.Previewer {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	return &sanitized{next: p, policy: policy}
}

func (s *sanitized) Preview(r formupload.Record) (template.HTML, error) {
	h, err := s.next.Preview(r)
	if err != nil {
		return "", err
	}
	return template.HTML(s.policy.Sanitize(string(h))), nil
}
