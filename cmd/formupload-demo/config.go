// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	formupload "blitznote.com/src/http.formupload"
)

// Config is read from the environment.
type Config struct {
	Addr string `env:"ADDR" envDefault:"localhost:8080"`

	// Transactions go here, and should be on the same filesystem as DataDir.
	StagingDir string `env:"STAGING_DIR" envDefault:"/var/tmp/formupload"`
	// Committed files end up in DataDir/committed.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	GCAgeLimit  time.Duration `env:"GC_AGE_LIMIT" envDefault:"6h"`
	GCMaxCount  int           `env:"GC_MAX_COUNT" envDefault:"8"`
	MaxFilesize uint64        `env:"MAX_FILESIZE" envDefault:"33554432"`

	// Pairs of key=base64(secret), separated by spaces.
	HmacKeys []string `env:"HMAC_KEYS" envSeparator:" "`
	SignWith string   `env:"SIGN_WITH"`

	Language      string `env:"LANGUAGE" envDefault:"en"`
	RatePerMinute int    `env:"RATE_PER_MINUTE" envDefault:"30"`

	// Restrict filesystem access to the directories above (OpenBSD only).
	Lockdown bool `env:"LOCKDOWN"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath       string `env:"LOG_PATH"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"7"`
	LogCompress   bool   `env:"LOG_COMPRESS"`
}

// envPrefix is what all variables start with.
const envPrefix = "FORMUPLOAD_"

// LoadConfig reads the configuration from 'environ', or the process' environment if nil.
func LoadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: envPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, errors.Wrap(err, "reading the environment")
	}
	if cfg.SignWith != "" && len(cfg.HmacKeys) == 0 {
		return cfg, errors.Errorf("%sSIGN_WITH is set, but there are no %sHMAC_KEYS", envPrefix, envPrefix)
	}
	return cfg, nil
}

// CommittedDir is where saved files are kept.
func (c Config) CommittedDir() string {
	return filepath.Join(c.DataDir, "committed")
}

// Translator for the configured language.
func (c Config) Translator() formupload.Translator {
	tag, err := language.Parse(c.Language)
	if err != nil {
		tag = language.English
	}
	return formupload.NewTranslator(tag)
}

// Uploads derives the configuration of stores and submissions.
func (c Config) Uploads(fsys afero.Fs, logger *zap.Logger) (*formupload.Configuration, error) {
	u := formupload.NewDefaultConfiguration(c.StagingDir)
	u.GCAgeLimit = c.GCAgeLimit
	u.GCMaxCount = c.GCMaxCount
	u.MaxFilesize = c.MaxFilesize
	u.Fs = fsys
	u.Logger = logger

	if err := u.IncomingHmacSecrets.Insert(c.HmacKeys); err != nil {
		return nil, errors.Wrap(err, "in HMAC_KEYS")
	}
	if c.SignWith != "" {
		if _, found := u.IncomingHmacSecrets[c.SignWith]; !found {
			return nil, errors.Errorf("no secret for key '%s'", c.SignWith)
		}
		u.SignWith = c.SignWith
	}
	return u, nil
}
