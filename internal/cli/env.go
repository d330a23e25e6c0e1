// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/portal-tui/internal/config"
	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/portal"
	"github.com/jeranaias/portal-tui/internal/session"
)

// globalOptions are the persistent flags of the root command.
type globalOptions struct {
	configPath string
	apiURL     string
	logLevel   string
}

// Env is what every command shares: the loaded configuration, the file
// logger and the lazily built backend client.
type Env struct {
	Config *config.Config
	Log    *logging.Logger

	opts     globalOptions
	tokens   *session.FileTokenStore
	client   *portal.Client
	provider *session.Provider
}

// load reads the configuration and opens the log file. A config file that
// cannot be decoded is reported on warn and the defaults are used.
func (e *Env) load(warn io.Writer) error {
	var (
		cfg *config.Config
		err error
	)
	if e.opts.configPath != "" {
		cfg, err = config.LoadFromPath(e.opts.configPath)
		if err != nil {
			return err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return err
		}
		if err != nil {
			fmt.Fprintln(warn, WarningStyle.Render("Warning:")+" "+err.Error()+"; using defaults")
		}
	}

	if e.opts.apiURL != "" {
		cfg.API.BaseURL = strings.TrimSuffix(e.opts.apiURL, "/")
	}
	if e.opts.logLevel != "" {
		cfg.Log.Level = e.opts.logLevel
	}
	config.SetGlobal(cfg)
	e.Config = cfg

	log, err := logging.New(logging.Options{Mode: cfg.Log.Mode, Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintln(warn, WarningStyle.Render("Warning:")+" logging disabled: "+err.Error())
		log = logging.Nop()
	}
	e.Log = log
	return nil
}

// close flushes the logger.
func (e *Env) close() {
	if e.Log != nil {
		e.Log.Sync()
	}
}

// Tokens returns the token file store.
func (e *Env) Tokens() *session.FileTokenStore {
	if e.tokens == nil {
		e.tokens = session.NewFileTokenStore(e.Config.Auth.TokenFile)
	}
	return e.tokens
}

// Client returns the backend client authenticated from the token file.
func (e *Env) Client() *portal.Client {
	if e.client == nil {
		e.client = portal.NewClient(e.Config.API.BaseURL, e.Tokens()).
			WithTimeout(e.Config.RequestTimeout()).
			WithLogger(e.Log)
	}
	return e.client
}

// Provider returns the session provider over Client and the token file.
func (e *Env) Provider() *session.Provider {
	if e.provider == nil {
		e.provider = session.NewProvider(e.Client(), e.Tokens()).WithLogger(e.Log)
	}
	return e.provider
}

// explain annotates err for the user. See the package level explain.
func (e *Env) explain(action string, err error) error {
	return explain(action, e.Config.API.BaseURL, err)
}
