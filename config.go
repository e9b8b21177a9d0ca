// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"net/http"
	"os"
	"time"
	"unicode"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	auth "blitznote.com/src/http.formupload/signature.auth"
)

// Configuration is shared by all stores and submissions of one form, or site.
//
// It is not meant to be modified while serving requests.
type Configuration struct {
	// Transactions are created below this directory.
	BaseDir string

	// Names of transaction directories start with this.
	Prefix string

	// Received files are spooled here before they are moved into a transaction.
	// Defaults to BaseDir, which makes such moves a mere rename.
	SpoolDir string

	// Parameters of garbage collection, see TempStore.
	GCAgeLimit time.Duration
	GCMaxCount int

	// Files larger than this (in bytes) are rejected. Zero means unlimited.
	MaxFilesize uint64

	// Text values larger than this (in bytes) fail the whole request.
	MaxValueSize int64

	// Restricts names of uploaded files; nil to allow any.
	RestrictFilenamesTo []*unicode.RangeTable
	UnicodeForm         *struct{ Use norm.Form }

	// If set, files with any other content type are rejected.
	AllowedContentTypes []string

	// Transaction ids get signed using the secret with key SignWith, if any.
	IncomingHmacSecrets auth.HmacSecrets
	SignWith            string

	Fs     afero.Fs
	Logger *zap.Logger
}

// NewDefaultConfiguration creates a new default configuration.
func NewDefaultConfiguration(baseDir string) *Configuration {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Configuration{
		BaseDir:             baseDir,
		Prefix:              DefaultPrefix,
		GCAgeLimit:          6 * time.Hour,
		GCMaxCount:          8,
		MaxValueSize:        10 << 20,
		IncomingHmacSecrets: make(auth.HmacSecrets),
		Fs:                  afero.NewOsFs(),
		Logger:              zap.NewNop(),
	}
}

// NewStore starts a store, which is meant to be used for one request only.
func (c *Configuration) NewStore() *TempStore {
	s := NewTempStore(c.Fs, c.BaseDir)
	s.Prefix = c.Prefix
	s.GCAgeLimit = c.GCAgeLimit
	s.GCMaxCount = c.GCMaxCount
	s.Logger = c.logger()
	return s
}

// NewSubmission reads the request's form.
//
// Call Close on the result to remove files that have not been moved.
func (c *Configuration) NewSubmission(r *http.Request) (*RequestSubmission, error) {
	return ParseRequest(r, c)
}

// Signer returns what signs transaction ids, if configured to do so.
func (c *Configuration) Signer() TransactionSigner {
	if c.SignWith == "" {
		return nil
	}
	return &auth.Signer{KeyID: c.SignWith, Secrets: c.IncomingHmacSecrets}
}

// FieldOptions are the options all fields should get.
func (c *Configuration) FieldOptions() []FieldOption {
	opts := []FieldOption{WithLogger(c.logger())}
	if signer := c.Signer(); signer != nil {
		opts = append(opts, WithSigner(signer))
	}
	return opts
}

func (c *Configuration) spoolDir() string {
	if c.SpoolDir != "" {
		return c.SpoolDir
	}
	return c.BaseDir
}

func (c *Configuration) unicodeForm() *norm.Form {
	if c.UnicodeForm == nil {
		return nil
	}
	return &c.UnicodeForm.Use
}

func (c *Configuration) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
