// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build caddyserver1.0
// +build caddyserver1.0

package formupload

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/caddyserver/caddy"
	"github.com/caddyserver/caddy/caddyhttp/httpserver"
	"golang.org/x/text/unicode/norm"
)

func init() {
	caddy.RegisterPlugin("formupload", caddy.Plugin{
		ServerType: "http",
		Action:     Setup,
	})
}

// Setup configures a Handler instance.
//
// This is called by Caddy as consequence of invoking `caddy.RegisterPlugin` in init.
func Setup(c *caddy.Controller) error {
	config, err := parseCaddyConfig(c)
	if err != nil {
		return err
	}

	site := httpserver.GetConfig(c)
	site.AddMiddleware(func(next httpserver.Handler) httpserver.Handler {
		return &Handler{
			Next:   next,
			Config: *config,
		}
	})

	return nil
}

// HandlerConfiguration is the result of directives found in a 'Caddyfile'.
//
// The same instance can be used to serve multiple paths, therefore we go through this struct
// to figure out the applicable configuration.
type HandlerConfiguration struct {
	// Prefixes on which Caddy activates this plugin (read-only).
	//
	// Order matters because scopes can overlap.
	PathScopes []string

	// Maps scopes (paths) to their own and potentially differently configurations.
	Scope map[string]*Configuration
}

// Handler represents a configured instance of this plugin.
type Handler struct {
	Next   httpserver.Handler
	Config HandlerConfiguration
}

// ServeHTTP provides requests within a scope with a store.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) (int, error) {
	// iterate over the scopes in the order they have been defined
	for _, scope := range h.Config.PathScopes {
		if httpserver.Path(r.URL.Path).Matches(scope) {
			return h.Config.Scope[scope].serveHTTP(w, r, h.Next.ServeHTTP)
		}
	}
	return h.Next.ServeHTTP(w, r)
}

func parseCaddyConfig(c *caddy.Controller) (*HandlerConfiguration, error) {
	siteConfig := &HandlerConfiguration{
		PathScopes: make([]string, 0, 1),
		Scope:      make(map[string]*Configuration),
	}

	for c.Next() {
		config := NewDefaultConfiguration("")
		config.BaseDir = ""

		scopes := c.RemainingArgs() // most likely only one path; but could be more
		if len(scopes) == 0 {
			return siteConfig, c.ArgErr()
		}
		siteConfig.PathScopes = append(siteConfig.PathScopes, scopes...)

		for c.NextBlock() {
			parse, known := directives[c.Val()]
			if !known {
				return siteConfig, c.ArgErr()
			}
			if err := parse(c, config); err != nil {
				return siteConfig, err
			}
		}

		if config.BaseDir == "" {
			return siteConfig, c.Errf("The staging directory 'staging_dir' is missing")
		}
		if config.SignWith != "" {
			if _, found := config.IncomingHmacSecrets[config.SignWith]; !found {
				return siteConfig, c.Errf("No secret for key '%s' in 'hmac_keys_in'", config.SignWith)
			}
		}

		for idx := range scopes {
			siteConfig.Scope[scopes[idx]] = config
		}
	}

	return siteConfig, nil
}

// directive reads the arguments of one line within the block.
type directive func(c *caddy.Controller, config *Configuration) error

var directives = map[string]directive{
	"staging_dir": func(c *caddy.Controller, config *Configuration) error {
		dir, err := oneArg(c)
		if err != nil {
			return err
		}
		finfo, err := os.Stat(dir)
		if err != nil {
			return c.Err(err.Error())
		}
		if !finfo.IsDir() {
			return c.ArgErr()
		}
		config.BaseDir = dir
		return nil
	},
	"spool_dir": func(c *caddy.Controller, config *Configuration) (err error) {
		config.SpoolDir, err = oneArg(c)
		return
	},
	"prefix": func(c *caddy.Controller, config *Configuration) error {
		prefix, err := oneArg(c)
		if err != nil {
			return err
		}
		if prefix == "" || strings.ContainsRune(prefix, '/') {
			return c.ArgErr()
		}
		config.Prefix = prefix
		return nil
	},
	"gc_age_limit": func(c *caddy.Controller, config *Configuration) error {
		arg, err := oneArg(c)
		if err != nil {
			return err
		}
		d, err := time.ParseDuration(arg)
		if err != nil {
			return c.Err(err.Error())
		}
		if d < time.Minute {
			return c.Err("must be ≥ 1m")
		}
		config.GCAgeLimit = d
		return nil
	},
	"gc_max_count": func(c *caddy.Controller, config *Configuration) error {
		n, err := uintArg(c, 16)
		config.GCMaxCount = int(n)
		return err
	},
	"max_filesize": func(c *caddy.Controller, config *Configuration) (err error) {
		config.MaxFilesize, err = uintArg(c, 64)
		return
	},
	"hmac_keys_in": func(c *caddy.Controller, config *Configuration) error {
		keys := c.RemainingArgs()
		if len(keys) == 0 {
			return c.ArgErr()
		}
		if err := config.IncomingHmacSecrets.Insert(keys); err != nil {
			return c.Err(err.Error())
		}
		return nil
	},
	"sign_with": func(c *caddy.Controller, config *Configuration) (err error) {
		config.SignWith, err = oneArg(c)
		return
	},
	"filenames_form": func(c *caddy.Controller, config *Configuration) error {
		form, err := oneArg(c)
		if err != nil {
			return err
		}
		switch form {
		case "NFC":
			config.UnicodeForm = &struct{ Use norm.Form }{Use: norm.NFC}
		case "NFD":
			config.UnicodeForm = &struct{ Use norm.Form }{Use: norm.NFD}
		case "none":
			config.UnicodeForm = nil
		default:
			return c.ArgErr()
		}
		return nil
	},
	"filenames_in": func(c *caddy.Controller, config *Configuration) error {
		blocks := c.RemainingArgs()
		if len(blocks) == 0 {
			return c.ArgErr()
		}
		v, err := ParseUnicodeBlockList(strings.Join(blocks, " "))
		if err != nil {
			return c.Err(err.Error())
		}
		config.RestrictFilenamesTo = []*unicode.RangeTable{v}
		return nil
	},
	"accept": func(c *caddy.Controller, config *Configuration) error {
		types := c.RemainingArgs()
		if len(types) == 0 {
			return c.ArgErr()
		}
		config.AllowedContentTypes = types
		return nil
	},
}

// oneArg returns the next argument on the line, of which there must be one.
func oneArg(c *caddy.Controller) (string, error) {
	if !c.NextArg() {
		return "", c.ArgErr()
	}
	return c.Val(), nil
}

func uintArg(c *caddy.Controller, bitSize int) (uint64, error) {
	arg, err := oneArg(c)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(arg, 10, bitSize)
	if err != nil {
		return 0, c.Err(err.Error())
	}
	return n, nil
}
